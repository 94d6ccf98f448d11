// Package browser provides the main page, the structure sidebar and the live
// update stream.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	gomponents "maragu.dev/gomponents"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/render"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/table"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// Handlers provides HTTP handlers for the browser feature.
type Handlers struct {
	session      *session.Session
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		session:      sess,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
}

// HomePage renders the page with the current state already in place.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	banner := common.PopFlash(w, r, h.sessionStore)

	sidebar, err := common.BuildSidebar(r.Context(), h.session)
	if err != nil {
		h.logger.Error("failed to list structures", "error", err)
		banner = common.BannerData{Kind: common.BannerError, Text: err.Error()}
	}

	d := PageData{
		Filename: h.session.Filename(),
		Sidebar:  sidebar,
		Editor:   h.session.Editor(),
		Banner:   banner,
		Current:  h.session.Current(),
	}
	if d.Current != nil {
		if v, err := h.session.View(); err == nil {
			d.View = v
		}
	}

	if err := common.Component(HomePage(d.Filename, h.isDev, d)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE endpoint. It does not send initial state;
// that is rendered by HomePage. When the database is replaced the sidebar is
// repainted and the stale structure cleared.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := h.sendReloaded(sse, r, ev); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendReloaded(sse *datastar.ServerSentEventGenerator, r *http.Request, ev notifier.Event) error {
	sd, err := common.BuildSidebar(r.Context(), h.session)
	if err != nil {
		return err
	}
	nodes := []gomponents.Node{
		common.Sidebar(sd),
		common.Success(reloadMessage(ev)),
	}
	if h.session.Current() == nil {
		nodes = append(nodes, table.Structure(nil), table.Results(nil))
	}
	for _, n := range nodes {
		if err := sse.PatchElementTempl(common.Component(n)); err != nil {
			return err
		}
	}
	return nil
}

// Select makes a table or view current and shows its rows.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	kind, ok := core.ParseKind(chi.URLParam(r, "kind"))
	if !ok || kind == core.KindQuery {
		h.fail(sse, fmt.Errorf("unknown structure kind %q", chi.URLParam(r, "kind")))
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.fail(sse, fmt.Errorf("invalid structure name: %w", err))
		return
	}

	v, err := h.session.Select(r.Context(), name, kind)
	if err != nil {
		h.fail(sse, err)
		return
	}
	h.patch(r.Context(), sse, h.session.Current(), v)
}

// Sidebar repaints the table and view lists.
func (h *Handlers) Sidebar(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	sd, err := common.BuildSidebar(r.Context(), h.session)
	if err != nil {
		h.fail(sse, err)
		return
	}
	if err := sse.PatchElementTempl(common.Component(common.Sidebar(sd))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, st *core.Structure, v *render.View) {
	nodes := []gomponents.Node{
		table.Structure(st),
		table.Results(v),
		common.Banner(common.BannerData{}),
	}
	if sd, err := common.BuildSidebar(ctx, h.session); err == nil {
		nodes = append(nodes, common.Sidebar(sd))
	}
	for _, n := range nodes {
		if err := sse.PatchElementTempl(common.Component(n)); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}

func (h *Handlers) fail(sse *datastar.ServerSentEventGenerator, err error) {
	h.logger.Warn("browser request failed", "error", err)
	if perr := sse.PatchElementTempl(common.Component(common.Failure(err))); perr != nil {
		_ = sse.ConsoleError(perr)
	}
}

func reloadMessage(ev notifier.Event) string {
	if ev.Reason == notifier.ReasonWatch {
		return "Database " + ev.Filename + " changed on disk and was reloaded."
	}
	return "Database " + ev.Filename + " loaded."
}
