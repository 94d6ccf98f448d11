package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/config"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

var kindTitle = cases.Title(language.English)

func renderResults(w io.Writer, rs *core.ResultSet, outFormat string) error {
	if rs == nil {
		rs = &core.ResultSet{}
	}

	switch outFormat {
	case config.OutputJSON:
		return renderJSON(w, rs)
	case config.OutputCSV:
		return format.WriteCSV(w, rs)
	case config.OutputMarkdown, "markdown":
		return renderMarkdown(w, rs)
	default:
		return renderTable(w, rs)
	}
}

func renderTable(w io.Writer, rs *core.ResultSet) error {
	if rs.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for i := range rs.Rows {
		values := rs.Values(i)
		row := make(table.Row, len(values))
		for j, v := range values {
			row[j] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rs.Len())
	return nil
}

// renderJSON writes one object per row. Blobs are written as hex like in the
// web interface rather than as base64.
func renderJSON(w io.Writer, rs *core.ResultSet) error {
	results := make([]map[string]any, 0, rs.Len())
	for _, r := range rs.Rows {
		row := make(map[string]any, len(r))
		for k, v := range r {
			if b, ok := v.([]byte); ok {
				v = format.Cell(b)
			}
			row[k] = v
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderMarkdown(w io.Writer, rs *core.ResultSet) error {
	if rs.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(rs.Columns, " | "))
	// Separator
	seps := make([]string, len(rs.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for i := range rs.Rows {
		values := rs.Values(i)
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = strings.ReplaceAll(formatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return format.Cell(v)
}

// Helper functions for subcommands

func listTables(ctx context.Context, w io.Writer, s *session.Session, outFormat string, viewsOnly bool) error {
	tables, views, err := s.Structures(ctx)
	if err != nil {
		return err
	}

	refs := views
	if !viewsOnly {
		refs = append(tables, views...)
	}

	rs := &core.ResultSet{Columns: []string{"name", "type"}}
	for _, ref := range refs {
		rs.Rows = append(rs.Rows, core.Row{"name": ref.Name, "type": string(ref.Kind)})
	}
	return renderResults(w, rs, outFormat)
}

// columnInfo represents schema column information.
type columnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
	Default  string `json:"default"`
	PK       bool   `json:"pk"`
}

type schemaOutput struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Columns    []columnInfo `json:"columns"`
	Definition string       `json:"definition"`
}

func showSchema(ctx context.Context, w io.Writer, s *session.Session, name, outFormat string) error {
	st, ddl, err := s.Describe(ctx, name)
	if err != nil {
		if core.IsSchemaNotFound(err) {
			return fmt.Errorf("table or view '%s' not found", name)
		}
		return err
	}

	columns := make([]columnInfo, 0, len(st.Columns))
	for _, c := range st.Columns {
		nullable := "YES"
		if c.NotNull {
			nullable = "NO"
		}
		defaultVal := ""
		if c.Default != nil {
			defaultVal = *c.Default
		}
		if c.PrimaryKey {
			if defaultVal != "" {
				defaultVal += " "
			}
			defaultVal += "(primary key)"
		}
		columns = append(columns, columnInfo{
			Name:     c.Name,
			Type:     c.Type,
			Nullable: nullable,
			Default:  defaultVal,
			PK:       c.PrimaryKey,
		})
	}

	if outFormat == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(schemaOutput{
			Name:       st.Name,
			Type:       string(st.Kind),
			Columns:    columns,
			Definition: ddl,
		})
	}

	_, _ = fmt.Fprintf(w, "%s: %s\n", kindTitle.String(string(st.Kind)), st.Name)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default"})
	for _, col := range columns {
		t.AppendRow(table.Row{col.Name, col.Type, col.Nullable, col.Default})
	}
	t.Render()

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Definition:")
	_, _ = fmt.Fprintln(w, ddl)
	return nil
}
