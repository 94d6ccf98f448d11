// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapters/sqlite"
)

// Schema is a small fixture with every row-identity shape the UI handles.
const Schema = `
	CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT);
	CREATE TABLE pairs (a INTEGER, b TEXT, note TEXT, PRIMARY KEY (a, b));
	CREATE TABLE notes (body TEXT, flag BOOLEAN, data BLOB, amount NUMERIC);
	CREATE INDEX idx_notes_body ON notes (body);
	CREATE VIEW v_names AS SELECT name FROM t;
`

// Open returns an in-memory database with the given statements applied.
// The database is closed when the test ends.
func Open(t testing.TB, statements ...string) *sqlite.Adapter {
	t.Helper()
	ctx := context.Background()

	a, err := sqlite.Open(ctx, sqlite.Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	for _, stmt := range statements {
		_, err := a.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return a
}
