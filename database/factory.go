// Package database is the public surface of go-dal: vendor dispatch, type
// aliases for the core contracts, and the named-client manager.
package database

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/oracle"
	"github.com/tmorand/go-dal/database/postgresql"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

// New creates an unconnected data-access client according to cfg. The concrete
// implementation is selected by cfg.Vendor, matched case-insensitively
// (supported: "postgresql", "oracle"). An unsupported or missing vendor yields
// a FactoryError, as does a constructor failure of the chosen vendor.
func New(cfg *config.DatabaseConfig, log logger.Logger) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Vendor) {
	case PostgreSQL:
		client, err = postgresql.New(cfg, log)
	case Oracle:
		client, err = oracle.New(cfg, log)
	default:
		return nil, types.NewFactoryError(cfg.Vendor,
			fmt.Errorf("%w (supported: %s)", types.ErrUnsupportedVendor, strings.Join(SupportedVendors(), ", ")))
	}

	if err != nil {
		return nil, types.NewFactoryError(cfg.Vendor, err)
	}
	return client, nil
}

// ValidateVendor returns nil if vendor is one of the supported vendor
// discriminators (matched case-insensitively), and an error listing the
// supported vendors otherwise.
func ValidateVendor(vendor string) error {
	if !slices.Contains(SupportedVendors(), strings.ToLower(vendor)) {
		return fmt.Errorf("%w: %s (supported: %v)", types.ErrUnsupportedVendor, vendor, SupportedVendors())
	}
	return nil
}

// SupportedVendors returns the list of supported vendor discriminators.
func SupportedVendors() []string {
	return []string{PostgreSQL, Oracle}
}
