package editor

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
)

// SetupRoutes configures routes for the editor feature.
func SetupRoutes(router chi.Router, sess *session.Session, sessionStore sessions.Store, cfg Config) error {
	handlers := NewHandlers(sess, sessionStore, cfg)

	router.Route("/editor", func(r chi.Router) {
		r.Post("/run", handlers.Run)
		r.Post("/script", handlers.Script)
		r.Post("/open", handlers.Open)
		r.Post("/save", handlers.Save)
		r.Post("/csv", handlers.CSV)
	})

	return nil
}
