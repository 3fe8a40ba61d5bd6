package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default pool tunables applied when the configuration leaves them unset.
const (
	DefaultMaxConns        = 10
	DefaultConnMaxIdleTime = 10 * time.Second
	DefaultConnectTimeout  = 0 // disabled
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file (config.yaml, optional)
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// YAML file is optional; absence is not an error.
	_ = k.Load(file.Provider("config.yaml"), yaml.Parser())

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: "GODAL_",
		TransformFunc: func(key, value string) (string, any) {
			// Double underscore separates nesting levels so that key names
			// keep their single underscores:
			// GODAL_DATABASE__MAX_CONNS -> database.max_conns
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "GODAL_")), "__", ".")
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return build(k)
}

// LoadFromMap builds a Config from an in-memory key map over the same defaults
// as Load. It is primarily useful in tests and embedded setups.
func LoadFromMap(values map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config map: %w", err)
	}

	return build(k)
}

func build(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"database.host":               "localhost",
		"database.max_conns":          DefaultMaxConns,
		"database.conn_max_idle_time": DefaultConnMaxIdleTime.String(),
		"database.connect_timeout":    "0s",

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Raw exposes the underlying Koanf instance for access to custom keys that are
// not part of the typed structure.
func (c *Config) Raw() *koanf.Koanf {
	return c.k
}
