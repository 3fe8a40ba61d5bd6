package types

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Marshaller transforms a normalized Result into application-level records.
// It must be a pure function; any returned error is surfaced to the caller as
// a ResultMarshallingError.
type Marshaller func(*Result) (any, error)

// Operation pairs a statement template with optional bind parameters and an
// optional result marshaller. Operations are immutable after construction and
// may be reused across executions with per-call parameter overrides.
type Operation struct {
	Statement string
	Params    []any
	Marshal   Marshaller
}

// Invocation is one entry of a transaction: an Operation plus an optional
// parameter override. A non-nil Params fully replaces Operation.Params; nil
// means the Operation's own parameters are used.
type Invocation struct {
	Operation Operation
	Params    []any
}

// NewOperation builds an Operation without a marshaller.
func NewOperation(statement string, params ...any) Operation {
	return Operation{Statement: statement, Params: params}
}

// OperationFromSqlizer builds an Operation from a squirrel query builder,
// so statements can be composed with the query-builder API instead of raw SQL.
func OperationFromSqlizer(q squirrel.Sqlizer, marshal ...Marshaller) (Operation, error) {
	statement, args, err := q.ToSql()
	if err != nil {
		return Operation{}, fmt.Errorf("failed to build statement: %w", err)
	}
	op := Operation{Statement: statement, Params: args}
	if len(marshal) > 0 {
		op.Marshal = marshal[0]
	}
	return op, nil
}

// MarshalWith adapts a typed whole-result function into a Marshaller.
func MarshalWith[T any](fn func(*Result) ([]T, error)) Marshaller {
	return func(r *Result) (any, error) {
		return fn(r)
	}
}

// MarshalRows adapts a typed per-row function into a Marshaller. The first
// row that fails to convert aborts marshalling.
func MarshalRows[T any](fn func(Row) (T, error)) Marshaller {
	return func(r *Result) (any, error) {
		out := make([]T, 0, len(r.Rows))
		for i, row := range r.Rows {
			v, err := fn(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}
