// Package schema discovers tables, views and their columns from the engine.
package schema

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

const (
	tableInfoQuery = `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`

	listQuery = `SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') ORDER BY name ASC`

	kindQuery = `SELECT type FROM sqlite_master WHERE name = ? AND type IN ('table', 'view')`

	createQuery = `SELECT sql FROM sqlite_master WHERE type = ? AND tbl_name = ?`

	indexQuery = `SELECT sql FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ?
		AND name NOT LIKE 'sqlite_autoindex_%' AND sql IS NOT NULL
		ORDER BY name`
)

// QuoteIdent quotes an identifier for use in SQL text.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Describe builds the browsing context for a table or view.
//
// Primary key columns are kept in the order PRAGMA table_info reports them.
// Tables without a primary key select rowid first so rows stay addressable.
// Views never have a primary key.
func Describe(ctx context.Context, eng core.Engine, name string, kind core.StructureKind) (*core.Structure, error) {
	cols, err := Columns(ctx, eng, name)
	if err != nil {
		return nil, err
	}

	st := &core.Structure{
		Kind:    kind,
		Name:    name,
		Columns: cols,
	}

	if kind == core.KindTable {
		for _, c := range cols {
			if c.PrimaryKey {
				st.PrimaryKey = append(st.PrimaryKey, c.Name)
			}
		}
	} else {
		for i := range st.Columns {
			st.Columns[i].PrimaryKey = false
		}
	}

	if kind == core.KindTable && !st.HasPrimaryKey() {
		st.BaseQuery = "select " + core.RowIDColumn + ", * from " + QuoteIdent(name)
	} else {
		st.BaseQuery = "select * from " + QuoteIdent(name)
	}
	return st, nil
}

// Columns returns the column descriptors of a table or view in declaration order.
func Columns(ctx context.Context, eng core.Engine, name string) ([]core.Column, error) {
	var cols []core.Column
	err := eng.Each(ctx, tableInfoQuery, func(r core.Row) error {
		c := core.Column{
			Name:       format.Cell(r["name"]),
			Type:       format.Cell(r["type"]),
			NotNull:    toInt(r["notnull"]) != 0,
			PrimaryKey: toInt(r["pk"]) > 0,
			Position:   int(toInt(r["cid"])),
		}
		if d := r["dflt_value"]; d != nil {
			s := format.Cell(d)
			c.Default = &s
		}
		cols = append(cols, c)
		return nil
	}, name)
	if err != nil {
		return nil, core.NewEngineError("failed to read columns", tableInfoQuery, err)
	}
	if len(cols) == 0 {
		return nil, &core.SchemaNotFoundError{Name: name}
	}
	return cols, nil
}

// List returns every table and view, each group ordered by name.
func List(ctx context.Context, eng core.Engine) (tables, views []core.StructureRef, err error) {
	err = eng.Each(ctx, listQuery, func(r core.Row) error {
		ref := core.StructureRef{Name: format.Cell(r["name"])}
		if format.Cell(r["type"]) == string(core.KindView) {
			ref.Kind = core.KindView
			views = append(views, ref)
		} else {
			ref.Kind = core.KindTable
			tables = append(tables, ref)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return tables, views, nil
}

// Lookup reports whether name is a table or a view.
func Lookup(ctx context.Context, eng core.Engine, name string) (core.StructureKind, error) {
	rs, err := eng.Query(ctx, kindQuery, name)
	if err != nil {
		return "", err
	}
	if rs.Len() == 0 {
		return "", &core.SchemaNotFoundError{Name: name}
	}
	kind, _ := core.ParseKind(format.Cell(rs.Rows[0]["type"]))
	return kind, nil
}

// Definition returns the CREATE statement of a structure followed by its
// user-defined indexes, each terminated with a semicolon and laid out by FormatDDL.
func Definition(ctx context.Context, eng core.Engine, name string, kind core.StructureKind) (string, error) {
	if kind != core.KindView {
		kind = core.KindTable
	}

	var b strings.Builder
	err := eng.Each(ctx, createQuery, func(r core.Row) error {
		if b.Len() == 0 && r["sql"] != nil {
			b.WriteString(FormatDDL(format.Cell(r["sql"]) + ";"))
		}
		return nil
	}, string(kind), name)
	if err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", &core.SchemaNotFoundError{Name: name}
	}

	err = eng.Each(ctx, indexQuery, func(r core.Row) error {
		b.WriteString("\n")
		b.WriteString(FormatDDL(format.Cell(r["sql"]) + ";"))
		return nil
	}, name)
	if err != nil {
		return "", fmt.Errorf("failed to read indexes: %w", err)
	}
	return b.String(), nil
}

var ddlComma = regexp.MustCompile(`,([^0-9])`)

// FormatDDL breaks a statement after every comma that is not followed by a
// digit, so column lists read one per line while DECIMAL(10,2) stays intact.
func FormatDDL(sql string) string {
	return ddlComma.ReplaceAllString(sql, ",\n\t\t\t$1")
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}
