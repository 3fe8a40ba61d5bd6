// Package oracle provides the Oracle-backed data-access client.
package oracle

import (
	"database/sql"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/internal/engine"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	if cfg.ServiceName != "" {
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.ServiceName, cfg.Username, cfg.Password, nil)
	}
	if cfg.SID != "" {
		urlOpts := map[string]string{"SID": cfg.SID}
		return go_ora.BuildUrl(cfg.Host, cfg.Port, "", cfg.Username, cfg.Password, urlOpts)
	}
	return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, nil)
}

// New creates an unconnected Oracle client. Oracle starts transactions
// implicitly, so the begin control statement is left empty.
func New(cfg *config.DatabaseConfig, log logger.Logger) (types.Client, error) {
	dsn := buildDSN(cfg)

	opener := func() (*sql.DB, error) {
		return sql.Open("oracle", dsn)
	}

	return engine.New(engine.Options{
		Vendor:   types.Oracle,
		Provider: engine.NewSQLProvider(opener, cfg, log),
		Control:  engine.TxControl{Commit: "COMMIT", Rollback: "ROLLBACK"},
		Logger:   log,
	}), nil
}
