package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Database vendor constants
const (
	PostgreSQL = "postgresql"
	Oracle     = "oracle"
)

var validate = validator.New()

// Validate checks cfg against struct-level validation tags and the
// cross-field rules that tags cannot express. The vendor discriminator is
// matched case-insensitively.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("field %s failed validation (%s)", fe.Namespace(), fe.Tag())
		}
		return err
	}

	return validateDatabase(&cfg.Database)
}

func validateDatabase(cfg *DatabaseConfig) error {
	vendors := []string{PostgreSQL, Oracle}
	if !slices.Contains(vendors, strings.ToLower(cfg.Vendor)) {
		return fmt.Errorf("unsupported database vendor: %s (must be one of: %s)",
			cfg.Vendor, strings.Join(vendors, ", "))
	}

	// A connection string overrides the host/port/database triple entirely.
	if cfg.ConnectionString == "" {
		if cfg.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Port == 0 {
			return fmt.Errorf("database port is required")
		}
	}

	return nil
}
