package core

import "context"

// Engine is the SQL collaborator the rest of the system talks to.
// Implementations must be safe to call sequentially from a single session;
// callers serialize access.
type Engine interface {
	// Each executes query and calls fn once per result row, in order.
	// fn must not call back into the engine.
	Each(ctx context.Context, query string, fn func(Row) error, args ...any) error

	// Query executes query and returns the materialized result with column headers.
	Query(ctx context.Context, query string, args ...any) (*ResultSet, error)

	// Exec executes one or more statements that do not return rows and
	// reports the number of rows affected by the last one.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Export serializes the whole database into the SQLite file format.
	Export(ctx context.Context) ([]byte, error)

	// Close releases the database handle.
	Close() error
}
