package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil/dbtest"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

func TestDescribe(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema)
	ctx := context.Background()

	tests := []struct {
		name      string
		structure string
		kind      core.StructureKind
		wantPK    []string
		wantQuery string
		wantCols  []string
	}{
		{
			name:      "single primary key",
			structure: "t",
			kind:      core.KindTable,
			wantPK:    []string{"id"},
			wantQuery: `select * from "t"`,
			wantCols:  []string{"id", "name"},
		},
		{
			name:      "composite key in discovery order",
			structure: "pairs",
			kind:      core.KindTable,
			wantPK:    []string{"a", "b"},
			wantQuery: `select * from "pairs"`,
			wantCols:  []string{"a", "b", "note"},
		},
		{
			name:      "no primary key selects rowid",
			structure: "notes",
			kind:      core.KindTable,
			wantPK:    nil,
			wantQuery: `select rowid, * from "notes"`,
			wantCols:  []string{"body", "flag", "data", "amount"},
		},
		{
			name:      "view has no key and no rowid",
			structure: "v_names",
			kind:      core.KindView,
			wantPK:    nil,
			wantQuery: `select * from "v_names"`,
			wantCols:  []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Describe(ctx, eng, tt.structure, tt.kind)
			require.NoError(t, err)

			assert.Equal(t, tt.kind, st.Kind)
			assert.Equal(t, tt.wantPK, st.PrimaryKey)
			assert.Equal(t, tt.wantQuery, st.BaseQuery)
			assert.Empty(t, st.OrderBy)

			var names []string
			for _, c := range st.Columns {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantCols, names)
		})
	}
}

func TestDescribe_ColumnDetails(t *testing.T) {
	eng := dbtest.Open(t, `CREATE TABLE items (id INTEGER PRIMARY KEY, label VARCHAR(20) NOT NULL DEFAULT 'x', price DECIMAL(10,2))`)

	st, err := Describe(context.Background(), eng, "items", core.KindTable)
	require.NoError(t, err)
	require.Len(t, st.Columns, 3)

	label := st.Columns[1]
	assert.Equal(t, "VARCHAR(20)", label.Type)
	assert.True(t, label.NotNull)
	require.NotNil(t, label.Default)
	assert.Equal(t, "'x'", *label.Default)
	assert.Equal(t, 1, label.Position)
	assert.False(t, label.PrimaryKey)
	assert.True(t, st.Columns[0].PrimaryKey)
}

func TestDescribe_QuotesNames(t *testing.T) {
	eng := dbtest.Open(t, `CREATE TABLE "odd ""name""" (v TEXT)`)

	st, err := Describe(context.Background(), eng, `odd "name"`, core.KindTable)
	require.NoError(t, err)
	assert.Equal(t, `select rowid, * from "odd ""name"""`, st.BaseQuery)
}

func TestDescribe_NotFound(t *testing.T) {
	eng := dbtest.Open(t)

	_, err := Describe(context.Background(), eng, "ghost", core.KindTable)
	require.Error(t, err)

	var nf *core.SchemaNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ghost", nf.Name)
}

func TestList(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema)

	tables, views, err := List(context.Background(), eng)
	require.NoError(t, err)

	assert.Equal(t, []core.StructureRef{
		{Name: "notes", Kind: core.KindTable},
		{Name: "pairs", Kind: core.KindTable},
		{Name: "t", Kind: core.KindTable},
	}, tables)
	assert.Equal(t, []core.StructureRef{{Name: "v_names", Kind: core.KindView}}, views)
}

func TestList_Empty(t *testing.T) {
	tables, views, err := List(context.Background(), dbtest.Open(t))
	require.NoError(t, err)
	assert.Empty(t, tables)
	assert.Empty(t, views)
}

func TestLookup(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema)
	ctx := context.Background()

	kind, err := Lookup(ctx, eng, "v_names")
	require.NoError(t, err)
	assert.Equal(t, core.KindView, kind)

	kind, err = Lookup(ctx, eng, "t")
	require.NoError(t, err)
	assert.Equal(t, core.KindTable, kind)

	_, err = Lookup(ctx, eng, "idx_notes_body")
	assert.True(t, core.IsSchemaNotFound(err))
}

func TestDefinition(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema)
	ctx := context.Background()

	ddl, err := Definition(ctx, eng, "notes", core.KindTable)
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE notes (body TEXT,\n\t\t\t flag BOOLEAN,\n\t\t\t data BLOB,\n\t\t\t amount NUMERIC);\n"+
			"CREATE INDEX idx_notes_body ON notes (body);",
		ddl)

	// automatic indexes behind PRIMARY KEY constraints are left out
	ddl, err = Definition(ctx, eng, "pairs", core.KindTable)
	require.NoError(t, err)
	assert.NotContains(t, ddl, "sqlite_autoindex")
	assert.Contains(t, ddl, "CREATE TABLE pairs")

	ddl, err = Definition(ctx, eng, "v_names", core.KindView)
	require.NoError(t, err)
	assert.Equal(t, "CREATE VIEW v_names AS SELECT name FROM t;", ddl)

	_, err = Definition(ctx, eng, "v_names", core.KindTable)
	assert.True(t, core.IsSchemaNotFound(err))
}

func TestFormatDDL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"CREATE TABLE a (x INT,y INT)", "CREATE TABLE a (x INT,\n\t\t\ty INT)"},
		{"CREATE TABLE a (p DECIMAL(10,2))", "CREATE TABLE a (p DECIMAL(10,2))"},
		{"no commas", "no commas"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDDL(tt.in))
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"t"`, QuoteIdent("t"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
