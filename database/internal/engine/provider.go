// Package engine implements the shared execution engine and transaction
// coordinator behind every vendor client. Vendor packages supply a DSN opener
// and transaction control statements; everything else lives here.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

// Lease is a borrowed, exclusively-owned connection used for one statement or
// one transaction. It must be released exactly once.
type Lease interface {
	// Run executes one statement on the leased connection and returns its
	// normalized result.
	Run(ctx context.Context, statement string, params []any) (*types.Result, error)

	// Release returns the connection to the pool.
	Release() error
}

// Provider yields leasable connections. It is the only shared mutable
// resource; concurrency-safe lease allocation is its responsibility.
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Connected() bool
	Lease(ctx context.Context) (Lease, error)
}

// Opener opens the vendor-specific *sql.DB handle. It is injected by the
// vendor packages (and by tests).
type Opener func() (*sql.DB, error)

// SQLProvider is a Provider backed by a database/sql pool. Pool sizing and
// idle eviction come from the database configuration; a lease maps to a
// dedicated *sql.Conn so that a transaction's control statements and
// operations share one session.
type SQLProvider struct {
	open Opener
	cfg  *config.DatabaseConfig
	log  logger.Logger

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLProvider creates an unconnected provider. Connect must be called
// before any lease is handed out.
func NewSQLProvider(open Opener, cfg *config.DatabaseConfig, log logger.Logger) *SQLProvider {
	return &SQLProvider{open: open, cfg: cfg, log: log}
}

// Connect opens the pool, applies the configured tunables, and verifies
// connectivity with a ping. Calling Connect on a connected provider is a no-op.
func (p *SQLProvider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return nil
	}

	db, err := p.open()
	if err != nil {
		return fmt.Errorf("failed to open database handle: %w", err)
	}

	maxConns := p.cfg.MaxConns
	if maxConns <= 0 {
		maxConns = config.DefaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxIdleTime(p.cfg.ConnMaxIdleTime)

	pingCtx := ctx
	if p.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, p.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			p.log.Error().Err(closeErr).Msg("Failed to close database handle after ping failure")
		}
		return fmt.Errorf("failed to ping database: %w", err)
	}

	p.db = db
	return nil
}

// Disconnect closes the pool. The provider can be reconnected afterwards.
func (p *SQLProvider) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Connected reports whether Connect has succeeded and Disconnect has not been
// called since.
func (p *SQLProvider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db != nil
}

// Lease borrows a dedicated connection from the pool.
func (p *SQLProvider) Lease(ctx context.Context) (Lease, error) {
	p.mu.RLock()
	db := p.db
	p.mu.RUnlock()

	if db == nil {
		return nil, types.ErrNotConnected
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlLease{conn: conn}, nil
}

type sqlLease struct {
	conn *sql.Conn
}

// Run dispatches the statement to the query or exec path by its leading
// keyword and normalizes the driver result. Absent and empty parameter lists
// are deliberately passed to the driver the same way.
func (l *sqlLease) Run(ctx context.Context, statement string, params []any) (*types.Result, error) {
	if returnsRows(statement) {
		rows, err := l.conn.QueryContext(ctx, statement, params...)
		if err != nil {
			return nil, err
		}
		return collectRows(rows)
	}

	res, err := l.conn.ExecContext(ctx, statement, params...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report rows affected; the count stays unset.
		affected = 0
	}
	return &types.Result{RowCount: affected}, nil
}

// Release returns the connection to the pool. sql.Conn tolerates a double
// close, but the engine guarantees exactly one call per lease.
func (l *sqlLease) Release() error {
	err := l.conn.Close()
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

// queryVerbs are the leading keywords of statements that produce a row set.
var queryVerbs = map[string]struct{}{
	"select":  {},
	"with":    {},
	"show":    {},
	"values":  {},
	"explain": {},
}

func returnsRows(statement string) bool {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return false
	}
	_, ok := queryVerbs[strings.ToLower(fields[0])]
	return ok
}

// collectRows drains rows into the vendor-independent Result shape.
func collectRows(rows *sql.Rows) (*types.Result, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fields := make([]types.Field, len(cols))
	for i, name := range cols {
		fields[i] = types.Field{Name: name}
	}

	var collected []types.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(types.Row, len(cols))
		for i, name := range cols {
			row[name] = values[i]
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &types.Result{
		Rows:     collected,
		RowCount: int64(len(collected)),
		Fields:   fields,
	}, nil
}
