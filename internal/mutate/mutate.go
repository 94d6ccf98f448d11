// Package mutate inserts, updates and deletes rows of the current table.
//
// Every statement binds its values as parameters. Each operation also returns
// a literal rendering of the statement for logs and user feedback.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/schema"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

var (
	// ErrReadOnly is returned for mutations on views and ad-hoc query results.
	ErrReadOnly = errors.New("only tables can be modified")

	// ErrNoRow is returned when a row index does not address the current result.
	ErrNoRow = errors.New("row is not part of the current result")

	// ErrStaleView is returned when an edit addresses a view that has since been re-rendered.
	ErrStaleView = errors.New("the table has changed since it was displayed, refresh and try again")

	// ErrNoRowsAffected is returned when the row identified by the predicate is gone.
	ErrNoRowsAffected = errors.New("row no longer exists, refresh the table")
)

// julianLayout is a date format SQLite's date functions accept, to the millisecond.
const julianLayout = "2006-01-02 15:04:05.000"

// Statement is an executed (or ready to execute) mutation.
type Statement struct {
	SQL     string
	Args    []any
	Preview string
}

// Input is the raw value typed for one column of a new row.
type Input struct {
	Value string
	Null  bool
}

// Insert adds a row built positionally from inputs, one per declared column.
// The caller reloads the table afterwards.
func Insert(ctx context.Context, eng core.Engine, st *core.Structure, inputs []Input) (*Statement, error) {
	if !st.Editable() {
		return nil, ErrReadOnly
	}
	if len(inputs) != len(st.Columns) {
		return nil, fmt.Errorf("expected %d values for %s, got %d", len(st.Columns), st.Name, len(inputs))
	}

	holders := make([]string, len(inputs))
	literals := make([]string, len(inputs))
	args := make([]any, len(inputs))
	for i, in := range inputs {
		col := st.Columns[i]
		v, err := format.Value(col, in.Value, in.Null)
		if err != nil {
			return nil, err
		}
		lit, err := format.Literal(col, in.Value, in.Null)
		if err != nil {
			return nil, err
		}
		holders[i] = "?"
		literals[i] = lit
		args[i] = v
	}

	table := schema.QuoteIdent(st.Name)
	stmt := &Statement{
		SQL:     "insert into " + table + " values (" + strings.Join(holders, ", ") + ")",
		Args:    args,
		Preview: "insert into " + table + " values (" + strings.Join(literals, ", ") + ")",
	}
	if _, err := eng.Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
		return stmt, err
	}
	return stmt, nil
}

// Update sets one cell of the row at rowIndex in st.Result. An empty raw value
// stores NULL. The row is located by its values before the edit, so key
// columns can be edited too. On success the in-memory row is patched and no
// requery is needed.
func Update(ctx context.Context, eng core.Engine, st *core.Structure, rowIndex int, column, raw string) (*Statement, error) {
	if !st.Editable() {
		return nil, ErrReadOnly
	}
	row, ok := st.Result.Row(rowIndex)
	if !ok {
		return nil, ErrNoRow
	}
	col, ok := st.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q in %s", column, st.Name)
	}

	isNull := raw == ""
	v, err := format.Value(col, raw, isNull)
	if err != nil {
		return nil, err
	}
	lit, err := format.Literal(col, raw, isNull)
	if err != nil {
		return nil, err
	}

	where, whereArgs, wherePreview, err := Predicate(st, row)
	if err != nil {
		return nil, err
	}

	table := schema.QuoteIdent(st.Name)
	target := schema.QuoteIdent(col.Name)
	stmt := &Statement{
		SQL:     "update " + table + " set " + target + " = ? where " + where,
		Args:    append([]any{v}, whereArgs...),
		Preview: "update " + table + " set " + target + " = " + lit + " where " + wherePreview,
	}

	n, err := eng.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return stmt, err
	}
	if n == 0 {
		return stmt, ErrNoRowsAffected
	}

	patched := maps.Clone(row)
	patched[col.Name] = v
	if fresh, err := reselect(ctx, eng, st, patched); err == nil {
		maps.Copy(row, fresh)
	} else {
		row[col.Name] = v
	}
	return stmt, nil
}

// reselect reads back the single row identified by row, so the in-memory
// copy holds exactly what the engine stored.
func reselect(ctx context.Context, eng core.Engine, st *core.Structure, row core.Row) (core.Row, error) {
	where, args, _, err := Predicate(st, row)
	if err != nil {
		return nil, err
	}
	rs, err := eng.Query(ctx, st.BaseQuery+" where "+where, args...)
	if err != nil {
		return nil, err
	}
	if rs.Len() != 1 {
		return nil, fmt.Errorf("expected one row of %s, got %d", st.Name, rs.Len())
	}
	return rs.Rows[0], nil
}

// Delete removes the row at rowIndex in st.Result. The caller reloads the table afterwards.
func Delete(ctx context.Context, eng core.Engine, st *core.Structure, rowIndex int) (*Statement, error) {
	if !st.Editable() {
		return nil, ErrReadOnly
	}
	row, ok := st.Result.Row(rowIndex)
	if !ok {
		return nil, ErrNoRow
	}

	where, args, preview, err := Predicate(st, row)
	if err != nil {
		return nil, err
	}

	table := schema.QuoteIdent(st.Name)
	stmt := &Statement{
		SQL:     "delete from " + table + " where " + where,
		Args:    args,
		Preview: "delete from " + table + " where " + preview,
	}

	n, err := eng.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return stmt, err
	}
	if n == 0 {
		return stmt, ErrNoRowsAffected
	}
	return stmt, nil
}

// Predicate builds the WHERE clause identifying row: a conjunction over the
// primary key columns in discovery order, or rowid for tables without one.
func Predicate(st *core.Structure, row core.Row) (where string, args []any, preview string, err error) {
	if !st.HasPrimaryKey() {
		id, ok := row[core.RowIDColumn]
		if !ok || id == nil {
			return "", nil, "", fmt.Errorf("row of %s has no %s", st.Name, core.RowIDColumn)
		}
		return core.RowIDColumn + " = ?", []any{id}, core.RowIDColumn + " = " + format.Cell(id), nil
	}

	parts := make([]string, 0, len(st.PrimaryKey))
	previews := make([]string, 0, len(st.PrimaryKey))
	for _, name := range st.PrimaryKey {
		ident := schema.QuoteIdent(name)
		v := row[name]
		if v == nil {
			parts = append(parts, ident+" is null")
			previews = append(previews, ident+" is null")
			continue
		}
		if ts, ok := v.(time.Time); ok {
			// the driver hands back date columns as time.Time; the stored text
			// may use any SQLite date format, so compare instants
			parts = append(parts, "julianday("+ident+") = julianday(?)")
			args = append(args, ts.UTC().Format(julianLayout))
		} else {
			parts = append(parts, ident+" = ?")
			args = append(args, v)
		}
		previews = append(previews, ident+" = "+literalOf(st, name, v))
	}
	return strings.Join(parts, " and "), args, strings.Join(previews, " and "), nil
}

func literalOf(st *core.Structure, column string, v any) string {
	col, _ := st.Column(column)
	lit, err := format.Literal(col, format.Cell(v), false)
	if err != nil {
		return format.Cell(v)
	}
	return lit
}
