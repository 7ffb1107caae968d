package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. ACCOUNTS_AUTH_JWT_SECRET for auth.jwt_secret.
const EnvPrefix = "ACCOUNTS"

// defaults lists every known key. Registering each key is also what lets
// viper resolve it from the environment during Unmarshal.
var defaults = map[string]any{
	"server.port":                     3001,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,
	"server.service_name":             "user-service",

	"database.driver":                "postgres",
	"database.url":                   "",
	"database.max_open_conns":        10,
	"database.max_idle_conns":        5,
	"database.connect_retries":       5,
	"database.query_timeout_seconds": 5,

	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 24 * 60,
	"auth.bcrypt_cost":            10,
	"auth.password_min_length":    8,
	"auth.max_concurrent_hashes":  4,
}

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file instead of
// searching for config.yaml. An empty path falls back to the search.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
