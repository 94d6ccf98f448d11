// Package files provides database upload and download.
package files

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
)

// MaxDatabaseSize bounds uploaded database files.
const MaxDatabaseSize = 512 << 20

// Handlers provides HTTP handlers for the files feature.
type Handlers struct {
	session      *session.Session
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		session:      sess,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
	}
}

// Open replaces the database with an uploaded file. The current database is
// only swapped once the whole upload has been read and opened.
func (h *Handlers) Open(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxDatabaseSize)

	file, header, err := r.FormFile("database")
	if err != nil {
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: "No database file received: " + err.Error()})
		return
	}
	defer func() { _ = file.Close() }()

	if err := h.session.Load(r.Context(), file, header.Filename); err != nil {
		h.logger.Warn("database upload failed", "file", header.Filename, "error", err)
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: err.Error()})
		return
	}

	h.notifier.Broadcast(notifier.Event{
		Generation: h.session.Generation(),
		Reason:     notifier.ReasonUpload,
		Filename:   h.session.Filename(),
	})
	h.redirect(w, r, common.BannerData{Kind: common.BannerSuccess, Text: "Opened " + h.session.Filename() + "."})
}

// Export downloads the database as a SQLite file.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.session.Export(r.Context())
	if err != nil {
		h.logger.Warn("database export failed", "error", err)
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, b common.BannerData) {
	if err := common.AddFlash(w, r, h.sessionStore, b); err != nil {
		h.logger.Warn("failed to save flash", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
