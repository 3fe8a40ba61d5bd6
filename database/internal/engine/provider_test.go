package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

func newMockProvider(t *testing.T) (*SQLProvider, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{Vendor: config.PostgreSQL, MaxConns: 2}
	opener := func() (*sql.DB, error) { return db, nil }

	return NewSQLProvider(opener, cfg, logger.New("disabled", false)), mock
}

func TestSQLProviderConnectAndDisconnect(t *testing.T) {
	p, mock := newMockProvider(t)

	assert.False(t, p.Connected())

	mock.ExpectPing()
	require.NoError(t, p.Connect(context.Background()))
	assert.True(t, p.Connected())

	// Connect is idempotent once connected.
	require.NoError(t, p.Connect(context.Background()))

	mock.ExpectClose()
	require.NoError(t, p.Disconnect(context.Background()))
	assert.False(t, p.Connected())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProviderConnectPingFailure(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	err := p.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, p.Connected())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProviderConnectOpenerFailure(t *testing.T) {
	cause := errors.New("bad dsn")
	opener := func() (*sql.DB, error) { return nil, cause }
	p := NewSQLProvider(opener, &config.DatabaseConfig{}, logger.New("disabled", false))

	err := p.Connect(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestSQLProviderLeaseBeforeConnect(t *testing.T) {
	p, _ := newMockProvider(t)

	_, err := p.Lease(context.Background())
	assert.ErrorIs(t, err, types.ErrNotConnected)
}

func TestSQLProviderConnectTimeout(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{Vendor: config.PostgreSQL, ConnectTimeout: 50 * time.Millisecond}
	p := NewSQLProvider(func() (*sql.DB, error) { return db, nil }, cfg, logger.New("disabled", false))

	mock.ExpectPing()
	require.NoError(t, p.Connect(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaseRunQueryNormalizesRows(t *testing.T) {
	p, mock := newMockProvider(t)
	ctx := context.Background()

	mock.ExpectPing()
	require.NoError(t, p.Connect(ctx))

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "ada").
		AddRow(int64(2), "grace")
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(rows)

	lease, err := p.Lease(ctx)
	require.NoError(t, err)
	defer lease.Release()

	res, err := lease.Run(ctx, "SELECT id, name FROM users", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.RowCount)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "ada", res.Rows[0]["name"])
	assert.Equal(t, int64(2), res.Rows[1]["id"])
	assert.Equal(t, []string{"id", "name"}, res.FieldNames())
}

func TestLeaseRunExecReportsRowsAffected(t *testing.T) {
	p, mock := newMockProvider(t)
	ctx := context.Background()

	mock.ExpectPing()
	require.NoError(t, p.Connect(ctx))

	mock.ExpectExec("UPDATE users SET active").
		WithArgs(false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	lease, err := p.Lease(ctx)
	require.NoError(t, err)
	defer lease.Release()

	res, err := lease.Run(ctx, "UPDATE users SET active=$1", []any{false})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.RowCount)
	assert.Nil(t, res.Rows)
	assert.Nil(t, res.Fields)
}

func TestLeaseRunStatementFailure(t *testing.T) {
	p, mock := newMockProvider(t)
	ctx := context.Background()

	mock.ExpectPing()
	require.NoError(t, p.Connect(ctx))

	cause := errors.New("syntax error")
	mock.ExpectQuery("SELECT nope").WillReturnError(cause)

	lease, err := p.Lease(ctx)
	require.NoError(t, err)
	defer lease.Release()

	_, err = lease.Run(ctx, "SELECT nope", nil)
	assert.ErrorIs(t, err, cause)
}

func TestReturnsRows(t *testing.T) {
	cases := []struct {
		statement string
		want      bool
	}{
		{"SELECT 1", true},
		{"select * from t", true},
		{"  WITH cte AS (SELECT 1) SELECT * FROM cte", true},
		{"EXPLAIN SELECT 1", true},
		{"VALUES (1)", true},
		{"SHOW server_version", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a=1", false},
		{"DELETE FROM t", false},
		{"CREATE TABLE t (a int)", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, returnsRows(tc.statement), "statement: %q", tc.statement)
	}
}
