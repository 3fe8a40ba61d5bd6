package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-" toml:"-" mapstructure:"-"`
}

// DatabaseConfig describes one vendor-backed database target and the pool
// tunables handed to the connection provider. It is read-only after Load.
type DatabaseConfig struct {
	Vendor   string `koanf:"vendor" validate:"required"` // "postgresql" or "oracle", case-insensitive
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"ssl_mode"`

	// Pool tunables, consumed by the connection provider rather than the
	// execution engine.
	MaxConns        int           `koanf:"max_conns" validate:"min=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"min=0"` // 0 disables idle eviction
	ConnectTimeout  time.Duration `koanf:"connect_timeout" validate:"min=0"`    // 0 disables the connect deadline

	// Oracle-specific settings
	ServiceName string `koanf:"service_name"` // Oracle service name
	SID         string `koanf:"sid"`          // Oracle SID

	// Connection string override (if needed)
	ConnectionString string `koanf:"connection_string"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}
