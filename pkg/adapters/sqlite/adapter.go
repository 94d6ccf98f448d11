// Package sqlite provides the embedded SQLite engine behind sqliteweb.
//
// Every database is held in memory: files are read into a fresh in-memory
// database and written back only through Export.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapter"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const memoryDSN = ":memory:"

// errNoSerializer is returned when the driver connection cannot (de)serialize.
var errNoSerializer = errors.New("driver does not support serialization")

// serializer is implemented by modernc.org/sqlite connections.
type serializer interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Config holds options for opening a database.
type Config struct {
	// Path of a database file to read. Empty opens a new, empty database.
	Path   string
	Logger *slog.Logger
}

// Adapter implements core.Engine for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter

	// scratch is a private copy of the database on disk, used only when the
	// driver cannot deserialize into memory.
	scratch string
}

var _ core.Engine = (*Adapter)(nil)

// Open opens the database described by cfg.
func Open(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Path == "" || cfg.Path == memoryDSN {
		return openMemory(ctx, cfg.Logger)
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}
	return Load(ctx, data, cfg.Logger)
}

// Load opens a new in-memory database holding the SQLite file image data.
// The image is validated before the adapter is returned.
func Load(ctx context.Context, data []byte, logger *slog.Logger) (*Adapter, error) {
	if len(data) == 0 {
		return openMemory(ctx, logger)
	}

	a, err := openMemory(ctx, logger)
	if err != nil {
		return nil, err
	}

	err = a.withSerializer(ctx, func(s serializer) error {
		return s.Deserialize(rollbackJournal(data))
	})
	if errors.Is(err, errNoSerializer) {
		_ = a.Close()
		a, err = openScratch(ctx, data, logger)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		_ = a.Close()
		return nil, core.NewEngineError("failed to load database", "", err)
	}

	if err := a.validate(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// rollbackJournal returns data with a WAL-mode header switched back to the
// rollback journal, which is the only mode an in-memory image can use.
func rollbackJournal(data []byte) []byte {
	const headerSize = 100
	if len(data) < headerSize || !strings.HasPrefix(string(data[:16]), "SQLite format 3") {
		return data
	}
	if data[18] != 2 && data[19] != 2 {
		return data
	}
	out := make([]byte, len(data))
	copy(out, data)
	out[18], out[19] = 1, 1
	return out
}

func openMemory(ctx context.Context, logger *slog.Logger) (*Adapter, error) {
	return connect(ctx, memoryDSN, logger)
}

// openScratch writes data to a temporary file and opens it directly.
func openScratch(ctx context.Context, data []byte, logger *slog.Logger) (*Adapter, error) {
	f, err := os.CreateTemp("", "sqliteweb-*.db")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch database: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write scratch database: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write scratch database: %w", err)
	}

	a, err := connect(ctx, path, logger)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	a.scratch = path
	return a, nil
}

func connect(ctx context.Context, dsn string, logger *slog.Logger) (*Adapter, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// An in-memory database lives and dies with its connection,
	// so the pool must hold exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a := &Adapter{}
	a.DB = db
	a.Logger = logger
	return a, nil
}

// validate forces SQLite to read the schema so a corrupt image fails now
// rather than on first use.
func (a *Adapter) validate(ctx context.Context) error {
	const q = "SELECT count(*) FROM sqlite_master"
	var n int
	if err := a.DB.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return core.NewEngineError("not a valid SQLite database", q, err)
	}
	return nil
}

// Export serializes the database into the SQLite file format.
func (a *Adapter) Export(ctx context.Context) ([]byte, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	var out []byte
	err := a.withSerializer(ctx, func(s serializer) error {
		var err error
		out, err = s.Serialize()
		return err
	})
	if err == nil && len(out) > 0 {
		return out, nil
	}
	if err != nil && !errors.Is(err, errNoSerializer) {
		// an empty database has no pages to serialize
		a.logger().Debug("serialize failed, falling back to VACUUM INTO", "error", err)
	}
	return a.vacuumExport(ctx)
}

// vacuumExport writes a compacted copy of the database to a temp file and reads it back.
func (a *Adapter) vacuumExport(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "sqliteweb-export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	target := filepath.Join(dir, "export.db")
	stmt := "VACUUM INTO '" + strings.ReplaceAll(target, "'", "''") + "'"
	if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
		return nil, core.NewEngineError("failed to export database", stmt, err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read exported database: %w", err)
	}
	return data, nil
}

func (a *Adapter) withSerializer(ctx context.Context, fn func(serializer) error) error {
	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return conn.Raw(func(driverConn any) error {
		s, ok := driverConn.(serializer)
		if !ok {
			return errNoSerializer
		}
		return fn(s)
	})
}

// Close closes the database and removes any scratch file.
func (a *Adapter) Close() error {
	err := a.BaseSQLAdapter.Close()
	if a.scratch != "" {
		_ = os.Remove(a.scratch)
		a.scratch = ""
	}
	return err
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}
