// Package session holds the state of one browsing session: the engine handle,
// the current structure and the SQL editor buffer.
//
// Every engine call goes through the session mutex, so the in-memory
// database sees one statement at a time even when HTTP handlers run
// concurrently.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/mutate"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/render"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/schema"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapter"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapters/sqlite"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// DefaultFilename is offered for exports when no file has been loaded.
const DefaultFilename = "file.sqli"

// QueryName names the structure built from ad-hoc editor SQL.
const QueryName = "query"

// Loader opens an engine over a serialized database. Empty data means a new database.
type Loader func(ctx context.Context, data []byte, logger *slog.Logger) (core.Engine, error)

// Config holds session configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// MaxRows caps rows rendered for ad-hoc queries (see render.Options)
	MaxRows int
	// QueryTimeout bounds editor queries and scripts. Zero means no limit.
	QueryTimeout time.Duration
	// DefaultFilename is the export name used before any file is loaded
	DefaultFilename string
	// Loader opens engines (defaults to the SQLite adapter)
	Loader Loader
}

// Session is the explicit context shared by the UI handlers.
type Session struct {
	mu sync.Mutex

	engine     core.Engine
	loader     Loader
	logger     *slog.Logger
	opts       render.Options
	timeout    time.Duration
	defaultFN  string
	filename   string
	current    *core.Structure
	lastQuery  *core.Structure
	viewID     string
	editor     string
	generation uint64
}

// New creates a session without a database. Call Open or Load before use.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	loader := cfg.Loader
	if loader == nil {
		loader = func(ctx context.Context, data []byte, logger *slog.Logger) (core.Engine, error) {
			return sqlite.Load(ctx, data, logger)
		}
	}
	fn := cfg.DefaultFilename
	if fn == "" {
		fn = DefaultFilename
	}
	return &Session{
		loader:    loader,
		logger:    logger,
		opts:      render.Options{MaxRows: cfg.MaxRows},
		timeout:   cfg.QueryTimeout,
		defaultFN: fn,
	}
}

// Open starts with an empty in-memory database unless one is already loaded.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return nil
	}
	eng, err := s.loader(ctx, nil, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.engine = eng
	s.generation++
	return nil
}

// Load reads a database image from r and replaces the current database.
// The old database stays in place unless the new one opens successfully.
func (s *Session) Load(ctx context.Context, r io.Reader, filename string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	eng, err := s.loader(ctx, data, s.logger)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", displayName(filename), err)
	}

	s.mu.Lock()
	old := s.engine
	s.engine = eng
	s.filename = filepath.Base(filename)
	s.current = nil
	s.lastQuery = nil
	s.viewID = ""
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("failed to close previous database", "error", err)
		}
	}
	s.logger.Info("database loaded", "file", s.Filename(), "bytes", len(data), "generation", gen)
	return nil
}

// LoadFile loads the database stored at path.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.Load(ctx, f, path)
}

// Export serializes the database and returns it with the download file name.
func (s *Session) Export(ctx context.Context) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, "", adapter.ErrNotConnected
	}
	data, err := s.engine.Export(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export database: %w", err)
	}
	return data, s.filenameLocked(), nil
}

// Filename is the name offered when the database is exported.
func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filenameLocked()
}

func (s *Session) filenameLocked() string {
	if s.filename == "" || s.filename == "." || s.filename == string(filepath.Separator) {
		return s.defaultFN
	}
	return s.filename
}

// Generation increases every time the database is replaced.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Structures lists the tables and views of the database.
func (s *Session) Structures(ctx context.Context) (tables, views []core.StructureRef, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return nil, nil, err
	}
	return schema.List(ctx, eng)
}

// Current returns the current structure, or nil.
func (s *Session) Current() *core.Structure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Select makes the named table or view current and renders its rows.
func (s *Session) Select(ctx context.Context, name string, kind core.StructureKind) (*render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return nil, err
	}

	actual, err := schema.Lookup(ctx, eng, name)
	if err != nil {
		return nil, err
	}
	if actual != kind {
		return nil, &core.SchemaNotFoundError{Name: name}
	}

	st, err := schema.Describe(ctx, eng, name, kind)
	if err != nil {
		return nil, err
	}
	v, err := render.Run(ctx, eng, st, s.opts)
	if err != nil {
		return nil, err
	}
	s.current = st
	s.viewID = v.ID
	return v, nil
}

// Browse re-runs the current structure's query, keeping its sort order.
func (s *Session) Browse(ctx context.Context) (*render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// View renders the current structure from its last result without querying.
func (s *Session) View() (*render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, core.ErrNoStructure
	}
	v := render.Build(s.current, s.opts)
	s.viewID = v.ID
	return v, nil
}

// ViewID identifies the last view rendered for the current structure.
func (s *Session) ViewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewID
}

// Cell renders one cell of the current structure from its last result.
func (s *Session) Cell(row, col int) (render.Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return render.Cell{}, false
	}
	return render.CellAt(s.current, row, col)
}

// Sort orders the current table or view by column and re-renders it.
func (s *Session) Sort(ctx context.Context, column string, desc bool) (*render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current
	if st == nil {
		return nil, core.ErrNoStructure
	}
	if st.Kind == core.KindQuery {
		return nil, errors.New("query results cannot be sorted, add an ORDER BY clause")
	}
	if !hasResultColumn(st, column) {
		return nil, fmt.Errorf("unknown column %q in %s", column, st.Name)
	}

	prev := st.OrderBy
	st.OrderBy = render.SortClause(column, desc)
	v, err := s.refreshLocked(ctx)
	if err != nil {
		st.OrderBy = prev
		return nil, err
	}
	return v, nil
}

// RunQuery executes editor SQL as an ad-hoc, read-only structure and makes it current.
func (s *Session) RunQuery(ctx context.Context, sql string) (*render.View, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, errors.New("nothing to run, the editor is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	st := &core.Structure{Kind: core.KindQuery, Name: QueryName, BaseQuery: sql}
	v, err := render.Run(ctx, eng, st, s.opts)
	if err != nil {
		return nil, err
	}
	s.current = st
	s.lastQuery = st
	s.viewID = v.ID
	s.logger.Debug("query executed", "rows", v.Total, "truncated", v.Truncated)
	return v, nil
}

// RunScript executes one or more statements without rendering a result.
func (s *Session) RunScript(ctx context.Context, sql string) (int64, error) {
	if strings.TrimSpace(sql) == "" {
		return 0, errors.New("nothing to run, the editor is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return eng.Exec(ctx, sql)
}

// QueryResult runs sql and returns every row without changing the current structure.
func (s *Session) QueryResult(ctx context.Context, sql string) (*core.ResultSet, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, errors.New("nothing to run, the editor is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return eng.Query(ctx, sql)
}

// LastQuery returns the most recent ad-hoc query structure, or nil.
func (s *Session) LastQuery() *core.Structure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// Insert adds a row to the current table and re-renders it.
func (s *Session) Insert(ctx context.Context, viewID string, inputs []mutate.Input) (*mutate.Statement, *render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, st, err := s.mutableLocked(viewID)
	if err != nil {
		return nil, nil, err
	}

	stmt, err := mutate.Insert(ctx, eng, st, inputs)
	if err != nil {
		return stmt, nil, err
	}
	s.logger.Info("row inserted", "table", st.Name, "sql", stmt.Preview)

	v, err := s.refreshLocked(ctx)
	return stmt, v, err
}

// Update stores raw into one cell of the current table and returns the
// re-rendered cell. The rest of the view is left untouched.
func (s *Session) Update(ctx context.Context, viewID string, row, col int, raw string) (*mutate.Statement, render.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, st, err := s.mutableLocked(viewID)
	if err != nil {
		return nil, render.Cell{}, err
	}
	if col < 0 || col >= len(st.Result.Columns) {
		return nil, render.Cell{}, fmt.Errorf("column %d is not part of %s", col, st.Name)
	}

	stmt, err := mutate.Update(ctx, eng, st, row, st.Result.Columns[col], raw)
	if err != nil {
		return stmt, render.Cell{}, err
	}
	s.logger.Info("row updated", "table", st.Name, "sql", stmt.Preview)

	cell, _ := render.CellAt(st, row, col)
	return stmt, cell, nil
}

// Delete removes a row of the current table and re-renders it.
func (s *Session) Delete(ctx context.Context, viewID string, row int) (*mutate.Statement, *render.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, st, err := s.mutableLocked(viewID)
	if err != nil {
		return nil, nil, err
	}

	stmt, err := mutate.Delete(ctx, eng, st, row)
	if err != nil {
		return stmt, nil, err
	}
	s.logger.Info("row deleted", "table", st.Name, "sql", stmt.Preview)

	v, err := s.refreshLocked(ctx)
	return stmt, v, err
}

// Definition returns the DDL of the current table or view.
func (s *Session) Definition(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return "", err
	}
	st := s.current
	if st == nil {
		return "", core.ErrNoStructure
	}
	if st.Kind == core.KindQuery {
		return "", errors.New("query results have no definition")
	}
	return schema.Definition(ctx, eng, st.Name, st.Kind)
}

// Describe reports the columns and DDL of any table or view without
// changing the current structure.
func (s *Session) Describe(ctx context.Context, name string) (*core.Structure, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, err := s.engineLocked()
	if err != nil {
		return nil, "", err
	}
	kind, err := schema.Lookup(ctx, eng, name)
	if err != nil {
		return nil, "", err
	}
	st, err := schema.Describe(ctx, eng, name, kind)
	if err != nil {
		return nil, "", err
	}
	ddl, err := schema.Definition(ctx, eng, name, kind)
	if err != nil {
		return nil, "", err
	}
	return st, ddl, nil
}

// Editor returns the SQL editor buffer.
func (s *Session) Editor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

// SetEditor replaces the SQL editor buffer.
func (s *Session) SetEditor(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = text
}

// Close releases the database.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	s.current = nil
	s.lastQuery = nil
	return err
}

// Statement picks what the editor runs: the selection when there is one,
// otherwise the whole buffer.
func Statement(text, selection string) string {
	if strings.TrimSpace(selection) != "" {
		return selection
	}
	return text
}

func (s *Session) engineLocked() (core.Engine, error) {
	if s.engine == nil {
		return nil, adapter.ErrNotConnected
	}
	return s.engine, nil
}

func (s *Session) mutableLocked(viewID string) (core.Engine, *core.Structure, error) {
	eng, err := s.engineLocked()
	if err != nil {
		return nil, nil, err
	}
	st := s.current
	if st == nil {
		return nil, nil, core.ErrNoStructure
	}
	if !st.Editable() {
		return nil, nil, mutate.ErrReadOnly
	}
	if viewID == "" || viewID != s.viewID {
		return nil, nil, mutate.ErrStaleView
	}
	return eng, st, nil
}

func (s *Session) refreshLocked(ctx context.Context) (*render.View, error) {
	eng, err := s.engineLocked()
	if err != nil {
		return nil, err
	}
	st := s.current
	if st == nil {
		return nil, core.ErrNoStructure
	}
	if st.Kind == core.KindQuery {
		var cancel context.CancelFunc
		ctx, cancel = s.withTimeout(ctx)
		defer cancel()
	}
	v, err := render.Run(ctx, eng, st, s.opts)
	if err != nil {
		return nil, err
	}
	s.viewID = v.ID
	return v, nil
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func hasResultColumn(st *core.Structure, column string) bool {
	if st.Result == nil {
		return false
	}
	for _, c := range st.Result.Columns {
		if c == column {
			return true
		}
	}
	return false
}

func displayName(filename string) string {
	if filename == "" {
		return "database"
	}
	return filepath.Base(filename)
}
