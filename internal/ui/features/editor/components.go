package editor

import (
	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
)

// selectionExpr captures the editor's selected text into $selection.
const selectionExpr = "$selection = document.getElementById('" + common.EditorID + "').value.substring(" +
	"document.getElementById('" + common.EditorID + "').selectionStart, " +
	"document.getElementById('" + common.EditorID + "').selectionEnd)"

// Panel is the SQL editor with its toolbar. The textarea is bound to $sql and
// also submitted as a plain form field by the download buttons.
func Panel(text string) gomponents.Node {
	return html.Section(
		html.Class("panel editor"),
		html.Form(
			html.Method("post"),
			html.Action("/editor/save"),
			html.Textarea(
				html.ID(common.EditorID),
				html.Name("sql"),
				html.Placeholder("select * from sqlite_master"),
				gomponents.Attr("spellcheck", "false"),
				data.Bind("sql"),
				gomponents.Text(text),
			),
			html.Div(
				html.Class("toolbar"),
				html.Button(
					html.Type("button"),
					html.Title("Runs the selection, or the whole editor when nothing is selected"),
					gomponents.Attr("data-on:click", selectionExpr+"; "+common.Post("/editor/run")),
					gomponents.Text("Run"),
				),
				html.Button(
					html.Type("button"),
					html.Class("secondary"),
					html.Title("Executes every statement without showing results"),
					gomponents.Attr("data-on:click", common.Post("/editor/script")),
					gomponents.Text("Run script"),
				),
				html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Attr("formaction", "/editor/save"), gomponents.Text("Save .sql")),
				html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Attr("formaction", "/editor/csv"), gomponents.Text("Download CSV")),
			),
		),
		html.Form(
			html.Class("toolbar"),
			html.Method("post"),
			html.Action("/editor/open"),
			gomponents.Attr("enctype", "multipart/form-data"),
			html.Label(html.For("script-file"), gomponents.Text("Open .sql ")),
			html.Input(
				html.ID("script-file"),
				html.Type("file"),
				html.Name("script"),
				gomponents.Attr("accept", ".sql,.txt,text/plain"),
				gomponents.Attr("data-on:change", "el.form.submit()"),
			),
		),
	)
}
