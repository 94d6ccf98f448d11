package browser

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/render"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/editor"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/table"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// PageData holds everything the main page renders on first load.
type PageData struct {
	Filename string
	Sidebar  common.SidebarData
	Editor   string
	Banner   common.BannerData
	Current  *core.Structure
	View     *render.View
}

// HomePage renders the whole application.
func HomePage(title string, isDev bool, d PageData) gomponents.Node {
	viewID := ""
	if d.View != nil {
		viewID = d.View.ID
	}
	signals := map[string]any{
		"sql":       d.Editor,
		"selection": "",
		"viewId":    viewID,
		"cellValue": "",
	}

	return common.Page(title, isDev, signals,
		topbar(d.Filename),
		html.Main(
			html.Class("layout"),
			common.Sidebar(d.Sidebar),
			html.Div(
				html.Class("workspace"),
				editor.Panel(d.Editor),
				common.Banner(d.Banner),
				table.Structure(d.Current),
				table.Results(d.View),
			),
		),
	)
}

func topbar(filename string) gomponents.Node {
	return html.Header(
		html.Class("topbar"),
		html.Div(
			html.Strong(gomponents.Text("sqliteweb")),
			html.Span(html.Class("muted"), gomponents.Text(" "+filename)),
		),
		html.Div(
			html.Form(
				html.Method("post"),
				html.Action("/db/open"),
				gomponents.Attr("enctype", "multipart/form-data"),
				html.Label(html.For("database-file"), gomponents.Text("Open database ")),
				html.Input(
					html.ID("database-file"),
					html.Type("file"),
					html.Name("database"),
					gomponents.Attr("data-on:change", "el.form.submit()"),
				),
			),
			html.A(html.Class("button secondary"), html.Href("/db/export"), gomponents.Text("Export database")),
		),
	)
}
