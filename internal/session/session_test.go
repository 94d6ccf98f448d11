package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/mutate"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil/dbtest"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/adapter"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

func newSession(t *testing.T, statements ...string) *Session {
	t.Helper()
	ctx := context.Background()
	s := New(Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, s.Open(ctx))
	t.Cleanup(func() { _ = s.Close() })
	for _, stmt := range statements {
		_, err := s.RunScript(ctx, stmt)
		require.NoError(t, err)
	}
	return s
}

func TestSession_NotOpen(t *testing.T) {
	s := New(Config{})
	_, _, err := s.Structures(context.Background())
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = s.Browse(context.Background())
	require.Error(t, err)
	assert.Equal(t, DefaultFilename, s.Filename())
}

func TestSession_Structures(t *testing.T) {
	s := newSession(t, dbtest.Schema)

	tables, views, err := s.Structures(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 3)
	require.Len(t, views, 1)
	assert.Equal(t, "v_names", views[0].Name)
}

func TestSession_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, `create table t (id integer primary key, name text)`)

	v, err := s.Select(ctx, "t", core.KindTable)
	require.NoError(t, err)
	assert.Equal(t, "No results.", v.Summary)

	_, v, err = s.Insert(ctx, v.ID, []mutate.Input{{Value: "1"}, {Value: "a"}})
	require.NoError(t, err)
	assert.Equal(t, "1 row", v.Summary)

	stmt, cell, err := s.Update(ctx, v.ID, 0, 1, "b")
	require.NoError(t, err)
	assert.Equal(t, `update "t" set "name" = 'b' where "id" = 1`, stmt.Preview)
	assert.Equal(t, "cell-0-1", cell.ID)
	assert.Equal(t, "b", cell.Text)

	rs, err := s.QueryResult(ctx, "select id, name from t")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "b"}, rs.Values(0))

	_, v, err = s.Delete(ctx, v.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "No results.", v.Summary)
}

func TestSession_StaleViewRejected(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema, `insert into t values (1, 'a'), (2, 'b')`)

	old, err := s.Select(ctx, "t", core.KindTable)
	require.NoError(t, err)
	_, err = s.Browse(ctx)
	require.NoError(t, err)

	_, _, err = s.Delete(ctx, old.ID, 0)
	require.ErrorIs(t, err, mutate.ErrStaleView)
	_, _, err = s.Update(ctx, "", 0, 1, "x")
	require.ErrorIs(t, err, mutate.ErrStaleView)

	rs, err := s.QueryResult(ctx, "select count(*) as n from t")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rs.Rows[0]["n"])
}

func TestSession_SelectKindMismatch(t *testing.T) {
	s := newSession(t, dbtest.Schema)

	_, err := s.Select(context.Background(), "v_names", core.KindTable)
	assert.True(t, core.IsSchemaNotFound(err))
	_, err = s.Select(context.Background(), "missing", core.KindTable)
	assert.True(t, core.IsSchemaNotFound(err))
	assert.Nil(t, s.Current())
}

func TestSession_ViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema, `insert into t values (1, 'a')`)

	v, err := s.Select(ctx, "v_names", core.KindView)
	require.NoError(t, err)
	_, _, err = s.Delete(ctx, v.ID, 0)
	require.ErrorIs(t, err, mutate.ErrReadOnly)
}

func TestSession_Sort(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema, `insert into t values (1, 'b'), (2, 'a'), (3, 'c')`)

	_, err := s.Select(ctx, "t", core.KindTable)
	require.NoError(t, err)

	v, err := s.Sort(ctx, "name", true)
	require.NoError(t, err)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, "c", v.Rows[0].Cells[1].Text)

	// Sort order survives a refresh.
	v, err = s.Browse(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", v.Rows[0].Cells[1].Text)

	_, err = s.Sort(ctx, "nope", false)
	require.Error(t, err)
	assert.Equal(t, ` ORDER BY "name" DESC`, s.Current().OrderBy)
}

func TestSession_RunQuery(t *testing.T) {
	ctx := context.Background()
	s := New(Config{Logger: testutil.NewTestLogger(t), MaxRows: 2})
	require.NoError(t, s.Open(ctx))
	t.Cleanup(func() { _ = s.Close() })
	_, err := s.RunScript(ctx, dbtest.Schema)
	require.NoError(t, err)
	_, err = s.RunScript(ctx, `insert into t values (1, 'a'), (2, 'b'), (3, 'c')`)
	require.NoError(t, err)

	v, err := s.RunQuery(ctx, "select name from t order by id")
	require.NoError(t, err)
	assert.Equal(t, core.KindQuery, v.Kind)
	assert.Len(t, v.Rows, 2)
	assert.True(t, v.Truncated)
	assert.Equal(t, 3, v.Total)
	assert.Same(t, s.Current(), s.LastQuery())

	_, _, err = s.Delete(ctx, v.ID, 0)
	require.ErrorIs(t, err, mutate.ErrReadOnly)

	_, err = s.RunQuery(ctx, "select * from missing")
	require.Error(t, err)
	assert.Equal(t, "query", s.Current().Name)

	_, err = s.RunQuery(ctx, "   ")
	require.Error(t, err)
}

func TestSession_Definition(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema)

	_, err := s.Definition(ctx)
	require.ErrorIs(t, err, core.ErrNoStructure)

	_, err = s.Select(ctx, "v_names", core.KindView)
	require.NoError(t, err)
	ddl, err := s.Definition(ctx)
	require.NoError(t, err)
	assert.Contains(t, ddl, "CREATE VIEW v_names")
}

func TestSession_Describe(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema)

	st, ddl, err := s.Describe(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, core.KindTable, st.Kind)
	assert.False(t, st.HasPrimaryKey())
	assert.Len(t, st.Columns, 4)
	assert.Contains(t, ddl, "CREATE INDEX idx_notes_body")
	assert.Nil(t, s.Current())

	st, _, err = s.Describe(ctx, "v_names")
	require.NoError(t, err)
	assert.Equal(t, core.KindView, st.Kind)

	_, _, err = s.Describe(ctx, "missing")
	assert.True(t, core.IsSchemaNotFound(err))
}

func TestSession_ExportLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema, `insert into t values (1, 'a')`)

	data, name, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFilename, name)
	gen := s.Generation()

	other := newSession(t)
	require.NoError(t, other.Load(ctx, bytes.NewReader(data), "/tmp/upload/people.db"))
	assert.Equal(t, "people.db", other.Filename())

	rs, err := other.QueryResult(ctx, "select name from t")
	require.NoError(t, err)
	assert.Equal(t, "a", rs.Rows[0]["name"])
	assert.Equal(t, gen, s.Generation())
}

func TestSession_LoadSwapsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema)

	_, err := s.Select(ctx, "t", core.KindTable)
	require.NoError(t, err)
	gen := s.Generation()

	err = s.Load(ctx, bytes.NewReader([]byte("definitely not sqlite")), "bad.db")
	require.Error(t, err)
	assert.Equal(t, gen, s.Generation())
	assert.NotNil(t, s.Current())
	assert.Equal(t, DefaultFilename, s.Filename())

	tables, _, err := s.Structures(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 3)
}

func TestSession_LoadClosesPreviousEngine(t *testing.T) {
	ctx := context.Background()
	var opened []*fakeEngine
	s := New(Config{Loader: func(_ context.Context, _ []byte, _ *slog.Logger) (core.Engine, error) {
		e := &fakeEngine{}
		opened = append(opened, e)
		return e, nil
	}})

	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Load(ctx, bytes.NewReader(nil), "x.db"))
	require.Len(t, opened, 2)
	assert.True(t, opened[0].closed)
	assert.False(t, opened[1].closed)
	assert.Equal(t, uint64(2), s.Generation())
}

func TestSession_LoadFile(t *testing.T) {
	ctx := context.Background()
	src := newSession(t, dbtest.Schema)
	data, _, err := src.Export(ctx)
	require.NoError(t, err)

	path := testutil.WriteFile(t, t.TempDir(), "fixture.sqlite", data)

	s := newSession(t)
	require.NoError(t, s.LoadFile(ctx, path))
	assert.Equal(t, "fixture.sqlite", s.Filename())

	err = s.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
}

func TestSession_Editor(t *testing.T) {
	s := New(Config{})
	s.SetEditor("select 1")
	assert.Equal(t, "select 1", s.Editor())
}

func TestStatement(t *testing.T) {
	assert.Equal(t, "select 2", Statement("select 1; select 2", "select 2"))
	assert.Equal(t, "select 1", Statement("select 1", "  "))
}

func TestSession_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RunScript(ctx, `insert into notes (body) values ('x')`)
			_, _, _ = s.Structures(ctx)
		}()
	}
	wg.Wait()

	rs, err := s.QueryResult(ctx, "select count(*) as n from notes")
	require.NoError(t, err)
	assert.Equal(t, int64(8), rs.Rows[0]["n"])
}

type fakeEngine struct {
	closed bool
}

func (f *fakeEngine) Each(context.Context, string, func(core.Row) error, ...any) error {
	return nil
}

func (f *fakeEngine) Query(context.Context, string, ...any) (*core.ResultSet, error) {
	return &core.ResultSet{}, nil
}

func (f *fakeEngine) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }

func (f *fakeEngine) Export(context.Context) ([]byte, error) {
	return nil, errors.New("not supported")
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func TestSession_CellAndViewID(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, dbtest.Schema, `insert into t values (1, 'a')`)

	_, ok := s.Cell(0, 0)
	assert.False(t, ok)
	assert.Empty(t, s.ViewID())

	v, err := s.Select(ctx, "t", core.KindTable)
	require.NoError(t, err)
	assert.Equal(t, v.ID, s.ViewID())

	c, ok := s.Cell(0, 1)
	require.True(t, ok)
	assert.Equal(t, "a", c.Text)
}
