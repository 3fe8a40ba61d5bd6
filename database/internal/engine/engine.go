package engine

import (
	"context"
	"time"

	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

// Engine executes statements and operations against a Provider. It implements
// types.Client and is shared by every vendor package; only the Provider and
// the transaction control statements differ per vendor.
type Engine struct {
	vendor   types.Vendor
	provider Provider
	control  TxControl
	log      logger.Logger
}

// Options configures an Engine.
type Options struct {
	Vendor   types.Vendor
	Provider Provider
	Control  TxControl
	Logger   logger.Logger
}

// New creates an engine for the given vendor. The engine is stateless between
// calls aside from the provider handle it holds.
func New(opts Options) *Engine {
	return &Engine{
		vendor:   opts.Vendor,
		provider: opts.Provider,
		control:  opts.Control,
		log:      opts.Logger,
	}
}

// Ensure the engine satisfies the public client contract.
var _ types.Client = (*Engine)(nil)

// Vendor returns the vendor discriminator this engine was built for.
func (e *Engine) Vendor() types.Vendor {
	return e.vendor
}

// Connect establishes the provider's connection pool.
func (e *Engine) Connect(ctx context.Context) error {
	if err := e.provider.Connect(ctx); err != nil {
		return types.NewConnectionError("failed to connect", err)
	}
	e.log.Info().Str("vendor", e.vendor).Msg("Connected to database")
	return nil
}

// Disconnect closes the provider's connection pool.
func (e *Engine) Disconnect(ctx context.Context) error {
	if err := e.provider.Disconnect(ctx); err != nil {
		return types.NewConnectionError("failed to disconnect", err)
	}
	e.log.Info().Str("vendor", e.vendor).Msg("Disconnected from database")
	return nil
}

// Execute runs a single statement on a freshly leased connection and returns
// its normalized result.
func (e *Engine) Execute(ctx context.Context, statement string, args ...any) (*types.Result, error) {
	lease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.release(lease)

	return e.run(ctx, lease, statement, args)
}

// ExecuteOperation runs op on a freshly leased connection. A non-nil override
// fully replaces op.Params; nil means op's own parameters are used.
func (e *Engine) ExecuteOperation(ctx context.Context, op types.Operation, override []any) (any, error) {
	lease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.release(lease)

	return e.runOperation(ctx, lease, op, override)
}

// acquire checks the connected precondition and leases a connection. Failures
// are reported as ConnectionError before any statement is attempted.
func (e *Engine) acquire(ctx context.Context) (Lease, error) {
	if !e.provider.Connected() {
		return nil, types.NewConnectionError("not connected", types.ErrNotConnected)
	}

	lease, err := e.provider.Lease(ctx)
	if err != nil {
		return nil, types.NewConnectionError("failed to lease connection", err)
	}
	return lease, nil
}

// release returns the lease to the provider. Release errors are logged rather
// than returned so they can never mask the outcome of the statement itself.
func (e *Engine) release(lease Lease) {
	if err := lease.Release(); err != nil {
		e.log.Error().Err(err).Str("vendor", e.vendor).Msg("Failed to release connection lease")
	}
}

// run executes one statement on the lease, records metrics, and classifies
// driver failures as QueryExecutionError.
func (e *Engine) run(ctx context.Context, lease Lease, statement string, params []any) (*types.Result, error) {
	start := time.Now()
	res, err := lease.Run(ctx, statement, params)
	elapsed := time.Since(start)

	if err != nil {
		recordStatement(ctx, e.vendor, elapsed, false, 0)
		return nil, types.NewQueryExecutionError(statement, err)
	}

	recordStatement(ctx, e.vendor, elapsed, true, res.RowCount)
	e.log.Debug().
		Str("vendor", e.vendor).
		Int64("row_count", res.RowCount).
		Dur("elapsed", elapsed).
		Msg("Statement executed")
	return res, nil
}

// runOperation applies the parameter precedence and marshalling rules shared
// by ExecuteOperation and Transact.
func (e *Engine) runOperation(ctx context.Context, lease Lease, op types.Operation, override []any) (any, error) {
	params := op.Params
	if override != nil {
		params = override
	}

	res, err := e.run(ctx, lease, op.Statement, params)
	if err != nil {
		return nil, err
	}

	if op.Marshal == nil {
		return res, nil
	}
	out, err := op.Marshal(res)
	if err != nil {
		return nil, types.NewResultMarshallingError(err)
	}
	return out, nil
}
