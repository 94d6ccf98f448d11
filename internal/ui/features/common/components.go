package common

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/resources"
)

// DatastarScript is the client bundle loaded by every page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"

// Element IDs patched by server-sent events.
const (
	SidebarID   = "sidebar"
	StructureID = "structure"
	ResultsID   = "results"
	MessageID   = "message"
	EditorID    = "sql"
)

// Component adapts a gomponents node to templ so it can be sent with
// PatchElementTempl or rendered as a page.
func Component(node gomponents.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return node.Render(w)
	})
}

// RenderHTML writes node as a complete HTML response.
func RenderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// Page wraps body in the application shell. signals seeds the client-side state.
func Page(title string, isDev bool, signals map[string]any, body ...gomponents.Node) gomponents.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" - sqliteweb")),
			html.Link(html.Rel("stylesheet"), html.Href(resources.StaticPath("app.css"))),
			html.Script(html.Type("module"), html.Src(DatastarScript)),
		),
		html.Body(
			data.Signals(signals),
			gomponents.Attr("data-init", Get("/updates")),
			gomponents.If(isDev, html.Div(html.Class("dev-reload"), gomponents.Attr("data-init", Get("/reload")))),
			gomponents.Group(body),
		),
	))
}

// Sidebar renders the table and view lists.
func Sidebar(sd SidebarData) gomponents.Node {
	groups := make([]gomponents.Node, 0, len(sd.ExplorerTree))
	for _, f := range sd.ExplorerTree {
		items := make([]gomponents.Node, 0, len(f.Children))
		for _, leaf := range f.Children {
			className := "explorer-item " + leaf.Type
			if leaf.Name == sd.Current {
				className += " active"
			}
			items = append(items, html.Li(
				html.A(
					html.Href("#"),
					html.Class(className),
					gomponents.Attr("data-on:click__prevent", Get(leaf.Path)),
					gomponents.Text(leaf.Name),
				),
			))
		}
		if len(items) == 0 {
			items = append(items, html.Li(html.Class("muted"), gomponents.Text("No "+strings.ToLower(f.Name)+".")))
		}
		groups = append(groups, html.Section(
			html.Class("explorer-group"),
			html.H3(gomponents.Text(f.Name+" "), html.Span(html.Class("muted"), gomponents.Text(LenStr(f.Children)))),
			html.Ul(gomponents.Group(items)),
		))
	}

	return html.Aside(
		html.ID(SidebarID),
		html.Class("sidebar"),
		html.Div(
			html.Class("sidebar-header"),
			html.Strong(gomponents.Text("Structures")),
			html.Button(
				html.Type("button"),
				html.Class("secondary"),
				gomponents.Attr("data-on:click", Get("/sidebar")),
				gomponents.Text("Refresh"),
			),
		),
		gomponents.Group(groups),
	)
}

// Banner renders the message area. An empty banner clears it.
func Banner(b BannerData) gomponents.Node {
	if b.Text == "" {
		return html.Div(html.ID(MessageID))
	}
	return html.Div(
		html.ID(MessageID),
		html.Class("message "+b.Kind),
		gomponents.Attr("role", "status"),
		gomponents.Text(b.Text),
	)
}

// Success is a success banner.
func Success(text string) gomponents.Node {
	return Banner(BannerData{Kind: BannerSuccess, Text: text})
}

// Failure is an error banner showing err's message.
func Failure(err error) gomponents.Node {
	return Banner(BannerData{Kind: BannerError, Text: err.Error()})
}
