package table

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/render"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// Results paints a rendered view. A nil view shows the empty placeholder.
func Results(v *render.View) gomponents.Node {
	if v == nil {
		return html.Section(
			html.ID(common.ResultsID),
			html.Class("panel"),
			html.P(html.Class("muted"), gomponents.Text("Select a table or view, or run a query.")),
		)
	}

	header := make([]gomponents.Node, 0, len(v.Header))
	for _, h := range v.Header {
		header = append(header, headerCell(h))
	}

	rows := make([]gomponents.Node, 0, len(v.Rows))
	for _, rr := range v.Rows {
		cells := make([]gomponents.Node, 0, len(rr.Cells)+1)
		if rr.Deletable {
			cells = append(cells, deleteCell(rr.Index))
		}
		for _, c := range rr.Cells {
			cells = append(cells, Cell(c))
		}
		rows = append(rows, html.Tr(gomponents.If(rr.Odd, html.Class("odd")), gomponents.Group(cells)))
	}

	summary := v.Summary
	if v.Truncated {
		summary = fmt.Sprintf("%s, showing the first %d", v.Summary, len(v.Rows))
	}

	return html.Section(
		html.ID(common.ResultsID),
		html.Class("panel"),
		data.Signals(map[string]any{"viewId": v.ID}),
		html.Div(
			html.Class("table-wrap"),
			html.Table(
				html.Class("results"),
				html.THead(html.Tr(gomponents.Group(header))),
				html.TBody(gomponents.Group(rows)),
			),
		),
		html.P(html.Class("summary"), gomponents.Text(summary)),
	)
}

func headerCell(h render.HeaderCell) gomponents.Node {
	if h.Delete {
		return html.Th(html.Class("delete"))
	}
	if !h.Sortable {
		return html.Th(gomponents.Text(h.Label))
	}
	return html.Th(
		html.Class("sortable"),
		gomponents.Text(h.Label),
		sortButton(h.Column, false),
		sortButton(h.Column, true),
	)
}

func sortButton(column string, desc bool) gomponents.Node {
	dir, label, title := "asc", "▲", "Sort ascending"
	if desc {
		dir, label, title = "desc", "▼", "Sort descending"
	}
	q := url.Values{"column": {column}, "dir": {dir}}
	return html.Button(
		html.Type("button"),
		html.Class("sort"),
		html.Title(title),
		gomponents.Attr("data-on:click", common.Post("/table/sort?"+q.Encode())),
		gomponents.Text(label),
	)
}

func deleteCell(row int) gomponents.Node {
	return html.Td(
		html.Class("delete"),
		html.Button(
			html.Type("button"),
			html.Class("danger"),
			html.Title("Delete row"),
			gomponents.Attr("data-on:click", "confirm('Delete this row?') && "+common.Post(rowPath(row)+"/delete")),
			gomponents.Text("×"),
		),
	)
}

// Cell paints one value. Editable cells open the inline editor on double click.
func Cell(c render.Cell) gomponents.Node {
	var classes []string
	if c.Null {
		classes = append(classes, "null")
	}
	if c.Editable {
		classes = append(classes, "editable")
	}
	return html.Td(
		html.ID(c.ID),
		gomponents.If(len(classes) > 0, html.Class(strings.Join(classes, " "))),
		gomponents.If(c.Editable, gomponents.Attr("data-on:dblclick", common.Get(cellPath(c)+"/edit"))),
		gomponents.Text(c.Text),
	)
}

// EditCell replaces a cell with an input that commits on blur. An empty
// value stores NULL.
func EditCell(c render.Cell) gomponents.Node {
	return html.Td(
		html.ID(c.ID),
		html.Class("editing"),
		html.Input(
			html.Type("text"),
			html.Name("cellValue"),
			html.Value(c.Text),
			gomponents.If(c.Null, html.Placeholder("NULL")),
			gomponents.Attr("data-init", "el.focus(); el.select()"),
			gomponents.Attr("data-on:keydown", "evt.key === 'Enter' && el.blur()"),
			gomponents.Attr("data-on:blur", "$cellValue = el.value; "+common.Post(cellPath(c))),
		),
	)
}

// Structure renders the title and menu of the current structure above body.
func Structure(st *core.Structure, body ...gomponents.Node) gomponents.Node {
	if st == nil {
		return html.Section(html.ID(common.StructureID))
	}

	title := common.KindLabel(st.Kind) + ": " + st.Name
	if st.Kind == core.KindQuery {
		title = "Query results"
	}

	var menu gomponents.Node
	if st.Kind != core.KindQuery {
		menu = html.Div(
			html.Class("structure-menu"),
			menuButton("Browse", common.Get("/table/browse")),
			menuButton("Structure", common.Get("/table/structure")),
			gomponents.If(st.Editable(), menuButton("Insert", common.Get("/table/insert"))),
		)
	}

	return html.Section(
		html.ID(common.StructureID),
		html.Class("panel"),
		html.Div(
			html.Class("structure-title"),
			html.H2(gomponents.Text(title)),
			menu,
		),
		gomponents.Group(body),
	)
}

func menuButton(label, action string) gomponents.Node {
	return html.Button(
		html.Type("button"),
		html.Class("secondary"),
		gomponents.Attr("data-on:click", action),
		gomponents.Text(label),
	)
}

// Definition shows a structure's DDL.
func Definition(ddl string) gomponents.Node {
	return html.Pre(html.Class("ddl"), gomponents.Text(ddl))
}

// InsertForm lists every column with a NULL toggle. Key columns cannot be
// left NULL from the form.
func InsertForm(st *core.Structure, viewID string) gomponents.Node {
	fields := make([]gomponents.Node, 0, len(st.Columns)*4)
	for i, col := range st.Columns {
		name := "col-" + strconv.Itoa(i)
		fields = append(fields,
			html.Label(html.For(name), gomponents.Text(col.Name)),
			html.Span(html.Class("muted"), gomponents.Text(col.Type)),
			valueInput(name, col),
			nullToggle(i, col),
		)
	}

	return html.Form(
		html.Class("insert"),
		gomponents.Attr("data-on:submit__prevent", "@post('/table/rows', {contentType: 'form'})"),
		html.Input(html.Type("hidden"), html.Name("viewId"), html.Value(viewID)),
		html.Div(html.Class("insert-form"), gomponents.Group(fields)),
		html.Div(
			html.Class("toolbar"),
			html.Button(html.Type("submit"), gomponents.Text("Insert")),
			html.Button(html.Type("button"), html.Class("secondary"), gomponents.Attr("data-on:click", common.Get("/table/browse")), gomponents.Text("Cancel")),
		),
	)
}

func valueInput(name string, col core.Column) gomponents.Node {
	switch {
	case format.IsBoolean(col.Type):
		return html.Select(
			html.ID(name),
			html.Name(name),
			html.Option(html.Value("true"), gomponents.Text("true")),
			html.Option(html.Value("false"), gomponents.Text("false")),
		)
	case format.IsBlob(col.Type):
		return html.Input(html.Type("text"), html.ID(name), html.Name(name), html.Placeholder("hex, e.g. CAFE"))
	default:
		var placeholder gomponents.Node
		if col.Default != nil {
			placeholder = html.Placeholder("default " + *col.Default)
		}
		return html.Input(html.Type("text"), html.ID(name), html.Name(name), placeholder)
	}
}

func nullToggle(i int, col core.Column) gomponents.Node {
	if col.PrimaryKey || col.NotNull {
		return html.Span()
	}
	return html.Label(
		html.Input(html.Type("checkbox"), html.Name("null-"+strconv.Itoa(i)), html.Value("1")),
		gomponents.Text(" NULL"),
	)
}

func rowPath(row int) string {
	return "/table/rows/" + strconv.Itoa(row)
}

func cellPath(c render.Cell) string {
	return rowPath(c.Row) + "/cells/" + strconv.Itoa(c.ColumnIndex)
}
