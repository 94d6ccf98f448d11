// Package table provides browsing and editing of the current table, view or
// query result.
package table

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"
	gomponents "maragu.dev/gomponents"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/mutate"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// Handlers provides HTTP handlers for the table feature.
type Handlers struct {
	session *session.Session
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{session: sess, logger: logger}
}

// Browse re-runs the current structure and repaints its rows.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	v, err := h.session.Browse(r.Context())
	if err != nil {
		h.fail(sse, "browse failed", err)
		return
	}
	h.patch(sse,
		Structure(h.session.Current()),
		Results(v),
		common.Banner(common.BannerData{}),
	)
}

// Sort orders the current table or view by a column, ascending unless dir is "desc".
func (h *Handlers) Sort(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	desc := r.URL.Query().Get("dir") == "desc"
	sse := datastar.NewSSE(w, r)

	v, err := h.session.Sort(r.Context(), column, desc)
	if err != nil {
		h.fail(sse, "sort failed", err)
		return
	}
	h.patch(sse, Results(v), common.Banner(common.BannerData{}))
}

// StructureDDL shows the DDL of the current table or view.
func (h *Handlers) StructureDDL(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ddl, err := h.session.Definition(r.Context())
	if err != nil {
		h.fail(sse, "definition failed", err)
		return
	}
	h.patch(sse, Structure(h.session.Current(), Definition(ddl)), common.Banner(common.BannerData{}))
}

// InsertPage shows the insert form for the current table.
func (h *Handlers) InsertPage(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	st := h.session.Current()
	switch {
	case st == nil:
		h.fail(sse, "insert form failed", core.ErrNoStructure)
		return
	case !st.Editable():
		h.fail(sse, "insert form failed", mutate.ErrReadOnly)
		return
	}
	h.patch(sse, Structure(st, InsertForm(st, h.session.ViewID())), common.Banner(common.BannerData{}))
}

// Insert adds a row from the submitted insert form.
func (h *Handlers) Insert(w http.ResponseWriter, r *http.Request) {
	// Read the form BEFORE creating SSE (SSE consumes the request body)
	viewID := r.FormValue("viewId")
	st := h.session.Current()
	var inputs []mutate.Input
	if st != nil {
		inputs = make([]mutate.Input, len(st.Columns))
		for i := range st.Columns {
			key := strconv.Itoa(i)
			inputs[i] = mutate.Input{
				Value: r.FormValue("col-" + key),
				Null:  r.FormValue("null-"+key) != "",
			}
		}
	}

	sse := datastar.NewSSE(w, r)

	stmt, v, err := h.session.Insert(r.Context(), viewID, inputs)
	if err != nil {
		h.fail(sse, "insert failed", err)
		return
	}
	h.patch(sse,
		Structure(h.session.Current()),
		Results(v),
		common.Success("Row inserted: "+stmt.Preview),
	)
}

// Delete removes a row of the current table.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var signals common.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.fail(sse, "delete failed", fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)

	row, err := intParam(r, "row")
	if err != nil {
		h.fail(sse, "delete failed", err)
		return
	}

	stmt, v, err := h.session.Delete(r.Context(), signals.ViewID, row)
	if err != nil {
		h.fail(sse, "delete failed", err)
		return
	}
	h.patch(sse, Results(v), common.Success("Row deleted: "+stmt.Preview))
}

// EditCell swaps a cell for its inline editor.
func (h *Handlers) EditCell(w http.ResponseWriter, r *http.Request) {
	var signals common.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.fail(sse, "edit failed", fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)

	row, col, err := cellParams(r)
	if err != nil {
		h.fail(sse, "edit failed", err)
		return
	}
	if signals.ViewID != h.session.ViewID() {
		h.fail(sse, "edit failed", mutate.ErrStaleView)
		return
	}
	if st := h.session.Current(); !st.Editable() {
		h.fail(sse, "edit failed", mutate.ErrReadOnly)
		return
	}

	c, ok := h.session.Cell(row, col)
	if !ok {
		h.fail(sse, "edit failed", mutate.ErrNoRow)
		return
	}
	h.patch(sse, EditCell(c))
}

// CommitCell stores an edited cell and repaints it.
func (h *Handlers) CommitCell(w http.ResponseWriter, r *http.Request) {
	var signals common.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.fail(sse, "update failed", fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)

	row, col, err := cellParams(r)
	if err != nil {
		h.fail(sse, "update failed", err)
		return
	}

	stmt, c, err := h.session.Update(r.Context(), signals.ViewID, row, col, signals.CellValue)
	if err != nil {
		// put the previous value back in place of the input
		if prev, ok := h.session.Cell(row, col); ok && !errors.Is(err, mutate.ErrStaleView) {
			_ = sse.PatchElementTempl(common.Component(Cell(prev)))
		}
		h.fail(sse, "update failed", err)
		return
	}
	h.patch(sse, Cell(c), common.Success("Row updated: "+stmt.Preview))
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, nodes ...gomponents.Node) {
	for _, n := range nodes {
		if err := sse.PatchElementTempl(common.Component(n)); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}

func (h *Handlers) fail(sse *datastar.ServerSentEventGenerator, msg string, err error) {
	h.logger.Warn(msg, "error", err)
	if perr := sse.PatchElementTempl(common.Component(common.Failure(err))); perr != nil {
		_ = sse.ConsoleError(perr)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s index %q", name, chi.URLParam(r, name))
	}
	return n, nil
}

func cellParams(r *http.Request) (row, col int, err error) {
	if row, err = intParam(r, "row"); err != nil {
		return 0, 0, err
	}
	if col, err = intParam(r, "col"); err != nil {
		return 0, 0, err
	}
	return row, col, nil
}
