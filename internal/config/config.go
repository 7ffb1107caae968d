package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	ServiceName            string `mapstructure:"service_name"             validate:"required"`
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the account store backend: "postgres" or "memory".
	Driver         string `mapstructure:"driver"          validate:"required,oneof=postgres memory"`
	URL            string `mapstructure:"url"             validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"  validate:"gte=1"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"  validate:"gte=0"`
	ConnectRetries int    `mapstructure:"connect_retries" validate:"gte=0"`
	// QueryTimeoutSeconds bounds every store call made on behalf of a request.
	QueryTimeoutSeconds int `mapstructure:"query_timeout_seconds" validate:"gte=0"`
}

// QueryTimeout returns the per-call store timeout, zero meaning none.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// BcryptCost is the credential hashing work factor.
	BcryptCost          int `mapstructure:"bcrypt_cost"           validate:"gte=4,lte=31"`
	PasswordMinLength   int `mapstructure:"password_min_length"   validate:"gte=8,lte=72"`
	MaxConcurrentHashes int `mapstructure:"max_concurrent_hashes" validate:"gte=1"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}
