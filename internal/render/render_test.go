package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/schema"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil/dbtest"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

func headerLabels(v *View) []string {
	var out []string
	for _, h := range v.Header {
		if h.Delete {
			out = append(out, "<delete>")
			continue
		}
		out = append(out, h.Label)
	}
	return out
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "No results.", Summary(0))
	assert.Equal(t, "1 row", Summary(1))
	assert.Equal(t, "2 rows", Summary(2))
	assert.Equal(t, "1000 rows", Summary(1000))
}

func TestSortClause(t *testing.T) {
	assert.Equal(t, ` ORDER BY "name" ASC`, SortClause("name", false))
	assert.Equal(t, ` ORDER BY "a""b" DESC`, SortClause(`a"b`, true))
}

func TestBuild_TableWithPrimaryKey(t *testing.T) {
	st := &core.Structure{
		Kind:       core.KindTable,
		Name:       "t",
		PrimaryKey: []string{"id"},
		Result: &core.ResultSet{
			Columns: []string{"id", "name"},
			Rows: []core.Row{
				{"id": int64(1), "name": "a"},
				{"id": int64(2), "name": nil},
			},
		},
	}

	v := Build(st, Options{})

	assert.Equal(t, []string{"<delete>", "id", "name"}, headerLabels(v))
	assert.True(t, v.Header[1].Sortable)
	assert.False(t, v.Header[0].Sortable)
	assert.Equal(t, "2 rows", v.Summary)
	assert.NotEmpty(t, v.ID)

	require.Len(t, v.Rows, 2)
	assert.True(t, v.Rows[0].Odd)
	assert.False(t, v.Rows[1].Odd)
	assert.True(t, v.Rows[0].Deletable)

	require.Len(t, v.Rows[1].Cells, 2)
	nameCell := v.Rows[1].Cells[1]
	assert.Equal(t, "cell-1-1", nameCell.ID)
	assert.Equal(t, "", nameCell.Text)
	assert.True(t, nameCell.Null)
	assert.True(t, nameCell.Editable)
}

func TestBuild_TableWithoutPrimaryKeyHidesRowID(t *testing.T) {
	st := &core.Structure{
		Kind: core.KindTable,
		Name: "notes",
		Result: &core.ResultSet{
			Columns: []string{"rowid", "body"},
			Rows:    []core.Row{{"rowid": int64(7), "body": "hi"}},
		},
	}

	v := Build(st, Options{})

	assert.Equal(t, []string{"<delete>", "body"}, headerLabels(v))
	require.Len(t, v.Rows, 1)
	require.Len(t, v.Rows[0].Cells, 1)
	assert.Equal(t, "body", v.Rows[0].Cells[0].Column)
	assert.Equal(t, 1, v.Rows[0].Cells[0].ColumnIndex)
	assert.Equal(t, "1 row", v.Summary)
}

func TestBuild_ViewIsSortableButReadOnly(t *testing.T) {
	st := &core.Structure{
		Kind: core.KindView,
		Name: "v",
		Result: &core.ResultSet{
			Columns: []string{"name"},
			Rows:    []core.Row{{"name": "a"}},
		},
	}

	v := Build(st, Options{})

	assert.Equal(t, []string{"name"}, headerLabels(v))
	assert.True(t, v.Header[0].Sortable)
	assert.False(t, v.Rows[0].Deletable)
	assert.False(t, v.Rows[0].Cells[0].Editable)
}

func TestBuild_QueryHasNoControlsAndTruncates(t *testing.T) {
	rows := make([]core.Row, 5)
	for i := range rows {
		rows[i] = core.Row{"n": int64(i)}
	}
	st := &core.Structure{
		Kind:   core.KindQuery,
		Result: &core.ResultSet{Columns: []string{"n"}, Rows: rows},
	}

	v := Build(st, Options{MaxRows: 3})

	assert.False(t, v.Header[0].Sortable)
	assert.Len(t, v.Rows, 3)
	assert.True(t, v.Truncated)
	assert.Equal(t, 5, v.Total)
	assert.Equal(t, "5 rows", v.Summary)

	v = Build(st, Options{MaxRows: -1})
	assert.Len(t, v.Rows, 5)
	assert.False(t, v.Truncated)
}

func TestBuild_EmptyResult(t *testing.T) {
	st := &core.Structure{
		Kind:       core.KindTable,
		Name:       "t",
		PrimaryKey: []string{"id"},
		Result:     &core.ResultSet{Columns: []string{"id", "name"}, Rows: []core.Row{}},
	}

	v := Build(st, Options{})
	assert.Equal(t, "No results.", v.Summary)
	assert.Empty(t, v.Rows)
	assert.Len(t, v.Header, 3)
}

func TestBuild_FreshIDPerRender(t *testing.T) {
	st := &core.Structure{Kind: core.KindView, Result: &core.ResultSet{}}
	assert.NotEqual(t, Build(st, Options{}).ID, Build(st, Options{}).ID)
}

func TestRun(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema,
		`INSERT INTO t (id, name) VALUES (1, 'b'), (2, 'a')`,
		`INSERT INTO notes (body) VALUES ('x')`)
	ctx := context.Background()

	st, err := schema.Describe(ctx, eng, "t", core.KindTable)
	require.NoError(t, err)
	st.OrderBy = SortClause("name", false)

	v, err := Run(ctx, eng, st, Options{})
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "a", v.Rows[0].Cells[1].Text)
	assert.Equal(t, 2, st.Result.Len())

	notes, err := schema.Describe(ctx, eng, "notes", core.KindTable)
	require.NoError(t, err)
	v, err = Run(ctx, eng, notes, Options{})
	require.NoError(t, err)
	assert.Equal(t, "rowid", notes.Result.Columns[0])
	assert.Equal(t, []string{"<delete>", "body", "flag", "data", "amount"}, headerLabels(v))
}

func TestRun_ErrorKeepsPreviousResult(t *testing.T) {
	eng := dbtest.Open(t, dbtest.Schema)
	ctx := context.Background()

	prev := &core.ResultSet{Columns: []string{"x"}}
	st := &core.Structure{Kind: core.KindQuery, BaseQuery: "select * from missing", Result: prev}

	v, err := Run(ctx, eng, st, Options{})
	require.Error(t, err)
	assert.Nil(t, v)
	assert.Same(t, prev, st.Result)

	var ee *core.EngineError
	assert.ErrorAs(t, err, &ee)
}

func TestCellAt(t *testing.T) {
	st := &core.Structure{
		Kind: core.KindTable,
		Name: "t",
		Result: &core.ResultSet{
			Columns: []string{"id", "data"},
			Rows:    []core.Row{{"id": int64(1), "data": []byte{0xca, 0xfe}}},
		},
	}

	c, ok := CellAt(st, 0, 1)
	require.True(t, ok)
	assert.Equal(t, "cell-0-1", c.ID)
	assert.Equal(t, "CAFE", c.Text)
	assert.True(t, c.Editable)

	_, ok = CellAt(st, 1, 0)
	assert.False(t, ok)
	_, ok = CellAt(st, 0, 2)
	assert.False(t, ok)
}
