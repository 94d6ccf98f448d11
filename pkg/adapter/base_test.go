package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

func newMockAdapter(t *testing.T) (*BaseSQLAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &BaseSQLAdapter{DB: db, Logger: testutil.NewTestLogger(t)}, mock
}

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			assert.NoError(t, base.Close())
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		args      []any
		affected  int64
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql: "CREATE TABLE users (id INT)",
		},
		{
			name:    "exec with bound args",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`update "t" set`).
					WithArgs("b", int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			sql:      `update "t" set "name" = ? where "id" = ?`,
			args:     []any{"b", int64(1)},
			affected: 1,
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}
			if tt.setupDB {
				var mock sqlmock.Sqlmock
				base, mock = newMockAdapter(t)
				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
			}

			n, err := base.Exec(ctx, tt.sql, tt.args...)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.affected, n)
		})
	}
}

func TestBaseSQLAdapter_ExecWrapsEngineError(t *testing.T) {
	base, mock := newMockAdapter(t)
	mock.ExpectExec("delete").WillReturnError(assert.AnError)

	_, err := base.Exec(context.Background(), "delete from t")
	require.Error(t, err)

	var ee *core.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "delete from t", ee.SQL)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		wantCols  []string
		wantRows  int
		expectErr bool
		errMsg    string
	}{
		{
			name:      "query without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "query success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(1, "alice").
					AddRow(2, "bob")
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			sql:      "SELECT id, name FROM users",
			wantCols: []string{"id", "name"},
			wantRows: 2,
		},
		{
			name:    "query without rows keeps headers",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			sql:      "SELECT id FROM users",
			wantCols: []string{"id"},
			wantRows: 0,
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INVALID").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}
			if tt.setupDB {
				var mock sqlmock.Sqlmock
				base, mock = newMockAdapter(t)
				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
			}

			rs, err := base.Query(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, rs)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, rs.Columns)
			assert.Len(t, rs.Rows, tt.wantRows)
		})
	}
}

func TestBaseSQLAdapter_EachStopsOnCallbackError(t *testing.T) {
	base, mock := newMockAdapter(t)
	rows := sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	stop := errors.New("stop")
	var seen []any
	err := base.Each(context.Background(), "SELECT id FROM t", func(r core.Row) error {
		seen = append(seen, r["id"])
		if len(seen) == 2 {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Len(t, seen, 2)
	assert.EqualValues(t, 1, seen[0])
}

func TestBaseSQLAdapter_IsConnected(t *testing.T) {
	base := &BaseSQLAdapter{}
	assert.False(t, base.IsConnected())

	base, _ = newMockAdapter(t)
	assert.True(t, base.IsConnected())
}
