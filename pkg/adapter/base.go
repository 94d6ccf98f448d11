// Package adapter provides the database/sql plumbing shared by engine adapters.
package adapter

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// ErrNotConnected is returned when the adapter has no open database.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and Each implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// Exec executes statements that don't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}
	b.logger().Debug("exec", "sql", sqlStr, "args", len(args))

	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, core.NewEngineError("failed to execute SQL", sqlStr, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report it; the statement itself succeeded
		return 0, nil
	}
	return n, nil
}

// Query executes a statement and materializes every row with its column headers.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.ResultSet, error) {
	rs := &core.ResultSet{Rows: []core.Row{}}
	cols, err := b.each(ctx, sqlStr, args, func(row core.Row) error {
		rs.Rows = append(rs.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	rs.Columns = cols
	return rs, nil
}

// Each executes a statement and hands every row to fn as it is read.
func (b *BaseSQLAdapter) Each(ctx context.Context, sqlStr string, fn func(core.Row) error, args ...any) error {
	_, err := b.each(ctx, sqlStr, args, fn)
	return err
}

func (b *BaseSQLAdapter) each(ctx context.Context, sqlStr string, args []any, fn func(core.Row) error) ([]string, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	b.logger().Debug("query", "sql", sqlStr, "args", len(args))

	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, core.NewEngineError("failed to execute query", sqlStr, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, core.NewEngineError("failed to read columns", sqlStr, err)
	}

	for rows.Next() {
		row, err := ScanRow(rows, cols)
		if err != nil {
			return nil, core.NewEngineError("failed to scan row", sqlStr, err)
		}
		if err := fn(row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewEngineError("error iterating rows", sqlStr, err)
	}
	return cols, nil
}

// ScanRow reads the current row of rows into a core.Row keyed by cols.
func ScanRow(rows *sql.Rows, cols []string) (core.Row, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(core.Row, len(cols))
	for i, col := range cols {
		row[col] = values[i]
	}
	return row, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

