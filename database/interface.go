package database

import (
	"github.com/tmorand/go-dal/database/types"
)

// Client is the capability surface of one vendor-backed data-access client.
// This type alias keeps callers on the database package while the definitions
// live in database/types to avoid import cycles.
type Client = types.Client

// Operation pairs a statement template with optional parameters and an
// optional result marshaller.
type Operation = types.Operation

// Invocation is one transaction entry: an Operation plus an optional
// parameter override.
type Invocation = types.Invocation

// Marshaller transforms a normalized Result into application-level records.
type Marshaller = types.Marshaller

// Result is the vendor-independent shape of a statement's outcome.
type Result = types.Result

// Row is a single result-set row keyed by column name.
type Row = types.Row

// Field describes one column of a result set.
type Field = types.Field
