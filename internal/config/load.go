package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TODO_DATABASE_URL.
const EnvPrefix = "TODO"

// defaults lists every configuration key with its default value. Keys with a
// nil default have none but are still bound to the environment so that
// Unmarshal sees them.
var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.log_format":                  "json",
	"server.shutdown_timeout_seconds":    10,
	"database.url":                       nil,
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"auth.jwt_secret":                    nil,
	"auth.token_lifetime_minutes":        30,
	"auth.bcrypt_cost":                   10,
	"auth.grant_policy":                  GrantPolicyAny,
	"metrics.enabled":                    true,
	"metrics.path":                       "/metrics",
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory and TODO_* environment variables, in increasing order of
// precedence. Returns a validated Config or an error.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is like Load but reads the given config file instead of searching
// for config.yaml. An explicitly named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		if value != nil {
			v.SetDefault(key, value)
		}
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
