package browser

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
)

// SetupRoutes configures routes for the browser feature.
func SetupRoutes(
	router chi.Router,
	sess *session.Session,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(sess, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.Updates)
	router.Get("/sidebar", handlers.Sidebar)
	router.Get("/structures/{kind}/{name}", handlers.Select)

	return nil
}
