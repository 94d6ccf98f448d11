package table

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
)

// SetupRoutes configures routes for the table feature.
func SetupRoutes(router chi.Router, sess *session.Session, logger *slog.Logger) error {
	handlers := NewHandlers(sess, logger)

	router.Route("/table", func(r chi.Router) {
		r.Get("/browse", handlers.Browse)
		r.Post("/sort", handlers.Sort)
		r.Get("/structure", handlers.StructureDDL)
		r.Get("/insert", handlers.InsertPage)
		r.Post("/rows", handlers.Insert)
		r.Post("/rows/{row}/delete", handlers.Delete)
		r.Get("/rows/{row}/cells/{col}/edit", handlers.EditCell)
		r.Post("/rows/{row}/cells/{col}", handlers.CommitCell)
	})

	return nil
}
