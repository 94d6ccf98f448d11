// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	browserFeature "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/browser"
	editorFeature "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/editor"
	filesFeature "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/files"
	tableFeature "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/table"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/resources"
)

// Options tune the routes.
type Options struct {
	IsDev       bool
	Logger      *slog.Logger
	SQLFilename string
	CSVFilename string
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	sess *session.Session,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	opts Options,
) error {
	// Hot reload endpoint for dev mode
	if opts.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := browserFeature.SetupRoutes(router, sess, sessionStore, notify, opts.Logger, opts.IsDev); err != nil {
		return err
	}

	if err := filesFeature.SetupRoutes(router, sess, sessionStore, notify, opts.Logger); err != nil {
		return err
	}

	if err := tableFeature.SetupRoutes(router, sess, opts.Logger); err != nil {
		return err
	}

	editorCfg := editorFeature.Config{
		SQLFilename: opts.SQLFilename,
		CSVFilename: opts.CSVFilename,
		Logger:      opts.Logger,
	}
	if err := editorFeature.SetupRoutes(router, sess, sessionStore, editorCfg); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
