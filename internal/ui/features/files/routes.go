package files

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
)

// SetupRoutes configures routes for the files feature.
func SetupRoutes(
	router chi.Router,
	sess *session.Session,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(sess, sessionStore, notify, logger)

	router.Post("/db/open", handlers.Open)
	router.Get("/db/export", handlers.Export)

	return nil
}
