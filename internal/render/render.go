// Package render turns a structure's result set into a view model: header
// cells, rows bound to their result index, and a summary line. It holds no
// HTML; the UI paints the model.
package render

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/schema"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// DefaultMaxRows caps the rows shown for ad-hoc queries.
const DefaultMaxRows = 1000

// Options tune how a view is built.
type Options struct {
	// MaxRows limits rows rendered for ad-hoc queries. Zero means DefaultMaxRows,
	// negative means unlimited. Table and view browsing is never truncated.
	MaxRows int
}

// HeaderCell is one column heading.
type HeaderCell struct {
	Label       string
	Column      string // result column name, empty for the delete heading
	ColumnIndex int    // index into ResultSet.Columns, -1 for the delete heading
	Delete      bool
	Sortable    bool
}

// Cell is one rendered value.
type Cell struct {
	ID          string
	Row         int
	Column      string
	ColumnIndex int
	Text        string
	Null        bool
	Editable    bool
}

// RenderedRow binds a result row, by index, to its rendered cells.
// Rows are rebuilt on every full requery.
type RenderedRow struct {
	Index     int
	Odd       bool
	Deletable bool
	Cells     []Cell
}

// View is the complete, display-ready model of one execution.
type View struct {
	ID        string
	Kind      core.StructureKind
	Name      string
	Header    []HeaderCell
	Rows      []RenderedRow
	Total     int
	Truncated bool
	Summary   string
}

// Run executes the structure's query (base query plus order clause) and builds
// its view. On failure nothing is returned and st.Result keeps the previous result.
func Run(ctx context.Context, eng core.Engine, st *core.Structure, opts Options) (*View, error) {
	rs, err := eng.Query(ctx, st.Query())
	if err != nil {
		return nil, err
	}
	st.Result = rs
	return Build(st, opts), nil
}

// Build renders st.Result without touching the engine.
func Build(st *core.Structure, opts Options) *View {
	rs := st.Result
	if rs == nil {
		rs = &core.ResultSet{}
	}
	table := st.Kind == core.KindTable
	hideRowID := table && !st.HasPrimaryKey()
	sortable := table || st.Kind == core.KindView

	v := &View{
		ID:      uuid.NewString(),
		Kind:    st.Kind,
		Name:    st.Name,
		Total:   rs.Len(),
		Summary: Summary(rs.Len()),
	}

	for i, col := range rs.Columns {
		if table && i == 0 {
			v.Header = append(v.Header, HeaderCell{Delete: true, ColumnIndex: -1})
			if hideRowID {
				continue
			}
		}
		v.Header = append(v.Header, HeaderCell{
			Label:       col,
			Column:      col,
			ColumnIndex: i,
			Sortable:    sortable,
		})
	}

	limit := rs.Len()
	if st.Kind == core.KindQuery {
		maxRows := opts.MaxRows
		if maxRows == 0 {
			maxRows = DefaultMaxRows
		}
		if maxRows > 0 && limit > maxRows {
			limit = maxRows
			v.Truncated = true
		}
	}

	v.Rows = make([]RenderedRow, 0, limit)
	for r := 0; r < limit; r++ {
		row := rs.Rows[r]
		rr := RenderedRow{
			Index:     r,
			Odd:       r%2 == 0,
			Deletable: table,
		}
		for i, col := range rs.Columns {
			if hideRowID && i == 0 {
				continue
			}
			val := row[col]
			rr.Cells = append(rr.Cells, Cell{
				ID:          CellID(r, i),
				Row:         r,
				Column:      col,
				ColumnIndex: i,
				Text:        format.Cell(val),
				Null:        val == nil,
				Editable:    table,
			})
		}
		v.Rows = append(v.Rows, rr)
	}
	return v
}

// CellAt renders the single cell at a result row and column index, as used to
// patch one cell after an edit.
func CellAt(st *core.Structure, row, col int) (Cell, bool) {
	r, ok := st.Result.Row(row)
	if !ok || col < 0 || col >= len(st.Result.Columns) {
		return Cell{}, false
	}
	name := st.Result.Columns[col]
	val := r[name]
	return Cell{
		ID:          CellID(row, col),
		Row:         row,
		Column:      name,
		ColumnIndex: col,
		Text:        format.Cell(val),
		Null:        val == nil,
		Editable:    st.Kind == core.KindTable,
	}, true
}

// CellID is the element ID of the cell at a result row and column index.
func CellID(row, col int) string {
	return fmt.Sprintf("cell-%d-%d", row, col)
}

// Summary describes a row count: "1 row", "N rows" or "No results.".
func Summary(n int) string {
	switch {
	case n == 0:
		return "No results."
	case n == 1:
		return "1 row"
	default:
		return fmt.Sprintf("%d rows", n)
	}
}

// SortClause builds the order clause appended to a base query.
func SortClause(column string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return " ORDER BY " + schema.QuoteIdent(column) + " " + dir
}
