// Package types contains the core data-access interface definitions for go-dal.
// These types are separate from the main database package to avoid import cycles
// and to make them easily accessible for mocking and testing.
package types

import "context"

// Database vendor identifiers shared across the database packages.
type Vendor = string

const (
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
)

// Client is the capability surface of one vendor-backed data-access client.
// A Client is safe for concurrent use: independent Execute/Transact calls may
// run in parallel against the shared connection pool, but statements within a
// single Transact call always run sequentially on one leased connection.
type Client interface {
	// Connect establishes the underlying connection pool. Execution methods
	// fail with a ConnectionError until Connect has succeeded.
	Connect(ctx context.Context) error

	// Disconnect closes the connection pool and releases its resources.
	Disconnect(ctx context.Context) error

	// Execute runs a single statement and returns its normalized Result.
	Execute(ctx context.Context, statement string, args ...any) (*Result, error)

	// ExecuteOperation runs op's statement. A non-nil override fully replaces
	// op.Params. If op.Marshal is set the marshalled value is returned,
	// otherwise the normalized *Result.
	ExecuteOperation(ctx context.Context, op Operation, override []any) (any, error)

	// Transact runs the invocations in order inside a single transaction on
	// one leased connection, rolling back on the first failure. The returned
	// slice is index-aligned with invs; each element follows the
	// ExecuteOperation return rules.
	Transact(ctx context.Context, invs []Invocation) ([]any, error)

	// Vendor returns the vendor discriminator this client was built for.
	Vendor() Vendor
}
