package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want StructureKind
		ok   bool
	}{
		{"table", KindTable, true},
		{" VIEW ", KindView, true},
		{"query", KindQuery, true},
		{"index", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructure_Helpers(t *testing.T) {
	st := &Structure{
		Kind:       KindTable,
		Name:       "t",
		Columns:    []Column{{Name: "id", Type: "integer", PrimaryKey: true}, {Name: "name", Type: "text"}},
		PrimaryKey: []string{"id"},
		BaseQuery:  `select * from "t"`,
		OrderBy:    ` ORDER BY "name" ASC`,
	}

	assert.True(t, st.Editable())
	assert.True(t, st.HasPrimaryKey())
	assert.Equal(t, `select * from "t" ORDER BY "name" ASC`, st.Query())

	col, ok := st.Column("name")
	require.True(t, ok)
	assert.Equal(t, "text", col.Type)

	_, ok = st.Column("missing")
	assert.False(t, ok)

	view := &Structure{Kind: KindView}
	assert.False(t, view.Editable())

	var none *Structure
	assert.False(t, none.Editable())
}

func TestResultSet_Access(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"a", "b"},
		Rows:    []Row{{"a": int64(1), "b": "x"}},
	}

	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, []any{int64(1), "x"}, rs.Values(0))
	assert.Nil(t, rs.Values(3))

	_, ok := rs.Row(-1)
	assert.False(t, ok)

	var empty *ResultSet
	assert.Equal(t, 0, empty.Len())
}

func TestEngineError(t *testing.T) {
	base := errors.New("no such table: t")

	err := NewEngineError("query", "select * from t", base)
	require.Error(t, err)
	assert.Equal(t, "query: no such table: t", err.Error())
	assert.ErrorIs(t, err, base)

	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "select * from t", ee.SQL)

	// already wrapped errors are not wrapped twice
	again := NewEngineError("exec", "", fmt.Errorf("context: %w", err))
	require.ErrorAs(t, again, &ee)
	assert.Equal(t, "query", ee.Op)

	assert.NoError(t, NewEngineError("exec", "", nil))
}

func TestSchemaNotFoundError(t *testing.T) {
	err := fmt.Errorf("describe: %w", &SchemaNotFoundError{Name: "ghost"})
	assert.True(t, IsSchemaNotFound(err))
	assert.Contains(t, err.Error(), `"ghost"`)
	assert.False(t, IsSchemaNotFound(errors.New("other")))
}
