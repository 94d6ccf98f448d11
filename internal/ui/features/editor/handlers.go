// Package editor provides the SQL editor: running queries and scripts, and
// moving editor contents and results in and out as files.
package editor

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	gomponents "maragu.dev/gomponents"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/format"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/table"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// Default download names.
const (
	DefaultSQLFilename = "file.sql"
	DefaultCSVFilename = "query.csv"
)

// maxScriptSize bounds uploaded .sql files.
const maxScriptSize = 10 << 20

// Handlers provides HTTP handlers for the editor feature.
type Handlers struct {
	session      *session.Session
	sessionStore sessions.Store
	logger       *slog.Logger
	sqlFilename  string
	csvFilename  string
}

// Config holds editor handler options.
type Config struct {
	SQLFilename string
	CSVFilename string
	Logger      *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, sessionStore sessions.Store, cfg Config) *Handlers {
	h := &Handlers{
		session:      sess,
		sessionStore: sessionStore,
		logger:       cfg.Logger,
		sqlFilename:  cfg.SQLFilename,
		csvFilename:  cfg.CSVFilename,
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	if h.sqlFilename == "" {
		h.sqlFilename = DefaultSQLFilename
	}
	if h.csvFilename == "" {
		h.csvFilename = DefaultCSVFilename
	}
	return h
}

// Run executes the selection (or the whole editor) and shows its rows.
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals common.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.fail(sse, fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.session.SetEditor(signals.SQL)

	v, err := h.session.RunQuery(r.Context(), session.Statement(signals.SQL, signals.Selection))
	if err != nil {
		h.fail(sse, err)
		return
	}

	nodes := []gomponents.Node{
		table.Structure(h.session.Current()),
		table.Results(v),
		common.Banner(common.BannerData{}),
	}
	// a query may have created or dropped structures
	if sd, err := common.BuildSidebar(r.Context(), h.session); err == nil {
		nodes = append(nodes, common.Sidebar(sd))
	}
	h.patch(sse, nodes...)
}

// Script executes every statement in the editor without rendering rows.
func (h *Handlers) Script(w http.ResponseWriter, r *http.Request) {
	var signals common.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.fail(sse, fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.session.SetEditor(signals.SQL)

	n, err := h.session.RunScript(r.Context(), signals.SQL)
	if err != nil {
		h.fail(sse, err)
		return
	}
	h.logger.Info("script executed", "rows_affected", n)

	nodes := []gomponents.Node{
		common.Success(fmt.Sprintf("Script executed, %d row(s) affected.", n)),
	}
	if st := h.session.Current(); st != nil && st.Kind != core.KindQuery {
		v, err := h.session.Browse(r.Context())
		if err != nil {
			// the current structure may have been dropped by the script
			nodes = append(nodes, table.Structure(nil), table.Results(nil))
		} else {
			nodes = append(nodes, table.Results(v))
		}
	}
	if sd, err := common.BuildSidebar(r.Context(), h.session); err == nil {
		nodes = append(nodes, common.Sidebar(sd))
	}
	h.patch(sse, nodes...)
}

// Open loads an uploaded text file into the editor.
func (h *Handlers) Open(w http.ResponseWriter, r *http.Request) {
	text, name, err := readUpload(w, r)
	if err != nil {
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: err.Error()})
		return
	}
	h.session.SetEditor(text)
	h.redirect(w, r, common.BannerData{Kind: common.BannerSuccess, Text: "Loaded " + name + " into the editor."})
}

// Save downloads the editor contents.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("sql")
	h.session.SetEditor(text)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.sqlFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// CSV downloads the result of the editor's SQL as CSV.
func (h *Handlers) CSV(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("sql")
	h.session.SetEditor(text)

	rs, err := h.session.QueryResult(r.Context(), text)
	if err != nil {
		h.logger.Warn("csv export failed", "error", err)
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := format.WriteCSV(&buf, rs); err != nil {
		h.redirect(w, r, common.BannerData{Kind: common.BannerError, Text: "Failed writing CSV: " + err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.csvFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func readUpload(w http.ResponseWriter, r *http.Request) (text, name string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScriptSize)
	file, header, err := r.FormFile("script")
	if err != nil {
		return "", "", fmt.Errorf("no file received: %w", err)
	}
	defer func() { _ = file.Close() }()

	var b strings.Builder
	if _, err := io.Copy(&b, file); err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return b.String(), header.Filename, nil
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, b common.BannerData) {
	if err := common.AddFlash(w, r, h.sessionStore, b); err != nil {
		h.logger.Warn("failed to save flash", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, nodes ...gomponents.Node) {
	for _, n := range nodes {
		if err := sse.PatchElementTempl(common.Component(n)); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}

func (h *Handlers) fail(sse *datastar.ServerSentEventGenerator, err error) {
	h.logger.Warn("editor request failed", "error", err)
	if perr := sse.PatchElementTempl(common.Component(common.Failure(err))); perr != nil {
		_ = sse.ConsoleError(perr)
	}
}
