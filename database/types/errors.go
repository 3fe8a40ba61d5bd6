//revive:disable-next-line:var-naming // Package name "types" avoids circular imports.
package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checks with errors.Is().
var (
	// ErrNotConnected is returned (wrapped in a ConnectionError) when an
	// execution method is called before Connect has succeeded.
	ErrNotConnected = errors.New("client is not connected")

	// ErrUnsupportedVendor is returned (wrapped in a FactoryError) when the
	// vendor discriminator does not match any supported vendor.
	ErrUnsupportedVendor = errors.New("unsupported database vendor")
)

// ConnectionError reports that the connection provider was unavailable, that the
// client was used before Connect, or that leasing a connection from the pool failed.
type ConnectionError struct {
	Message string
	cause   error
}

// NewConnectionError wraps cause in a ConnectionError with the given message.
func NewConnectionError(message string, cause error) *ConnectionError {
	return &ConnectionError{Message: message, cause: cause}
}

func (e *ConnectionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.cause
}

// QueryExecutionError reports that a statement failed at the driver level.
// Control statements (begin, commit, rollback) are reported the same way.
type QueryExecutionError struct {
	Statement string
	cause     error
}

// NewQueryExecutionError wraps cause in a QueryExecutionError for the given statement.
func NewQueryExecutionError(statement string, cause error) *QueryExecutionError {
	return &QueryExecutionError{Statement: statement, cause: cause}
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("statement execution failed: %v", e.cause)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.cause
}

// ResultMarshallingError reports that a caller-supplied marshaller failed while
// transforming a Result. The query itself succeeded; only post-processing failed.
type ResultMarshallingError struct {
	cause error
}

// NewResultMarshallingError wraps cause in a ResultMarshallingError.
func NewResultMarshallingError(cause error) *ResultMarshallingError {
	return &ResultMarshallingError{cause: cause}
}

func (e *ResultMarshallingError) Error() string {
	return fmt.Sprintf("result marshalling failed: %v", e.cause)
}

func (e *ResultMarshallingError) Unwrap() error {
	return e.cause
}

// RollbackError reports that a transaction rollback failed after an earlier
// failure had already aborted the transaction. Both failures are preserved:
// Cause is the rollback failure, Prior is the failure that triggered it.
type RollbackError struct {
	Cause error
	Prior error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed: %v (after: %v)", e.Cause, e.Prior)
}

// Unwrap exposes both the rollback failure and the prior failure so that
// errors.Is/errors.As match either chain.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, e.Prior}
}

// FactoryError reports that vendor dispatch could not resolve or construct a
// client for the requested vendor discriminator.
type FactoryError struct {
	Vendor string
	cause  error
}

// NewFactoryError wraps cause in a FactoryError for the given vendor discriminator.
func NewFactoryError(vendor string, cause error) *FactoryError {
	return &FactoryError{Vendor: vendor, cause: cause}
}

func (e *FactoryError) Error() string {
	if e.Vendor == "" {
		return fmt.Sprintf("database vendor is not set: %v", e.cause)
	}
	return fmt.Sprintf("cannot construct client for vendor %q: %v", e.Vendor, e.cause)
}

func (e *FactoryError) Unwrap() error {
	return e.cause
}
