package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

// TxControl holds the vendor's transaction control statements. An empty Begin
// means the vendor starts transactions implicitly (Oracle).
type TxControl struct {
	Begin    string
	Commit   string
	Rollback string
}

// Transact runs the invocations strictly in order inside one transaction on a
// single leased connection. On the first failure the transaction is rolled
// back and a single error is surfaced; there is no partial result. The lease
// is released exactly once on every path.
func (e *Engine) Transact(ctx context.Context, invs []types.Invocation) ([]any, error) {
	lease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.release(lease)

	log := e.log.WithFields(map[string]any{
		"tx_id":  uuid.NewString(),
		"vendor": e.vendor,
	})

	if e.control.Begin != "" {
		if _, err := e.run(ctx, lease, e.control.Begin, nil); err != nil {
			return nil, e.abort(ctx, lease, log, err)
		}
	}

	results := make([]any, 0, len(invs))
	for i, inv := range invs {
		out, err := e.runOperation(ctx, lease, inv.Operation, inv.Params)
		if err != nil {
			log.Warn().Int("operation", i).Err(err).Msg("Transaction operation failed, rolling back")
			return nil, e.abort(ctx, lease, log, err)
		}
		results = append(results, out)
	}

	if _, err := e.run(ctx, lease, e.control.Commit, nil); err != nil {
		log.Warn().Err(err).Msg("Transaction commit failed, rolling back")
		return nil, e.abort(ctx, lease, log, err)
	}

	log.Debug().Int("operations", len(invs)).Msg("Transaction committed")
	return results, nil
}

// abort issues the rollback control statement and returns the error to
// surface: the prior failure when the rollback succeeds, or a RollbackError
// carrying both failures when it does not.
func (e *Engine) abort(ctx context.Context, lease Lease, log logger.Logger, prior error) error {
	if _, rbErr := e.run(ctx, lease, e.control.Rollback, nil); rbErr != nil {
		log.Error().Err(rbErr).Msg("Rollback failed after aborted transaction")
		return &types.RollbackError{Cause: rbErr, Prior: prior}
	}
	log.Debug().Msg("Transaction rolled back")
	return prior
}
