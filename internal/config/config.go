// Package config provides configuration management for the research hub
// service. It loads configuration from environment variables with sensible
// defaults and validates it so the application starts safely.
//
// The rate-limit policies themselves are fixed in code; only the surrounding
// infrastructure (storage, Redis, runtime flavor) and the account lockout
// knobs are configurable.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FORMAT: console or json (default: console)
//   - LOG_FILE: Optional log file path (default: stdout)
//
// Database Configuration:
//   - DATABASE_TYPE: Database type - "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./research_hub.db)
//   - POSTGRES_HOST: PostgreSQL host (default: localhost)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (default: research_hub)
//   - POSTGRES_USER: PostgreSQL username (default: postgres)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address. Empty runs rate limiting on
//     process-local counters only (default: empty)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//   - REDIS_TIMEOUT: Per-call budget for the shared store, at most 5s (default: 2s)
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_RUNTIME: "server" or "edge" (default: server)
//   - RATE_LIMIT_KEY_PREFIX: Prefix for counter keys (default: ratelimit:)
//   - RATE_LIMIT_SWEEP_INTERVAL: Expired-counter sweep period in server
//     runtime (default: 1m)
//
// Account Lockout:
//   - LOCKOUT_MAX_ATTEMPTS: Consecutive failures before locking (default: 5)
//   - LOCKOUT_DURATION: How long an account stays locked (default: 15m)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"research-hub/internal/common/validation"
)

// MaxRedisTimeout bounds REDIS_TIMEOUT; a request must never wait on the
// shared store longer than this.
const MaxRedisTimeout = 5 * time.Second

// Config holds all configuration values for the service. String fields
// correspond to environment variables; parsed accessors are provided for
// numeric and duration values.
//
// The configuration is loaded using Load() and should be validated using
// Validate() before use.
type Config struct {
	// Application settings
	Port      string // Server port number
	LogLevel  string // Logging level (debug, info, warn, error)
	LogFormat string // console or json

	// Database configuration
	DatabaseType     string // "sqlite" or "postgres"
	DatabasePath     string // Path to SQLite database file
	PostgresHost     string // PostgreSQL host address
	PostgresPort     string // PostgreSQL port number
	PostgresDB       string // PostgreSQL database name
	PostgresUser     string // PostgreSQL username
	PostgresPassword string // PostgreSQL password
	PostgresSSLMode  string // PostgreSQL SSL mode (disable, require, etc.)

	// Redis configuration for the shared counter store
	RedisAddress  string // Redis server address (host:port), empty for local-only
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size
	RedisTimeout  string // Per-call timeout for shared store operations

	// Rate limiting configuration
	RateLimitEnabled       bool   // Whether rate limiting is enabled
	RateLimitRuntime       string // "server" or "edge"
	RateLimitKeyPrefix     string // Prefix for counter keys
	RateLimitSweepInterval string // Sweep period for expired counters

	// Account lockout configuration
	LockoutMaxAttempts string // Failed logins before the account locks
	LockoutDuration    string // Lock duration (e.g., "15m")
}

// Load creates a new Config instance with values loaded from environment variables.
// If an environment variable is not set, the corresponding default value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config to ensure all values are properly set and valid.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Database configuration
		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./research_hub.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "research_hub"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		// Redis configuration
		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),
		RedisTimeout:  getEnv("REDIS_TIMEOUT", "2s"),

		// Rate limiting configuration
		RateLimitEnabled:       getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitRuntime:       getEnv("RATE_LIMIT_RUNTIME", "server"),
		RateLimitKeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:"),
		RateLimitSweepInterval: getEnv("RATE_LIMIT_SWEEP_INTERVAL", "1m"),

		// Account lockout configuration
		LockoutMaxAttempts: getEnv("LOCKOUT_MAX_ATTEMPTS", "5"),
		LockoutDuration:    getEnv("LOCKOUT_DURATION", "15m"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
//
// This function accepts common boolean representations:
//   - "true", "1", "t", "TRUE", "True" -> true
//   - "false", "0", "f", "FALSE", "False" -> false
//   - Any other value or parsing error -> returns defaultValue
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// IsPostgres reports whether the PostgreSQL backend is selected
func (c *Config) IsPostgres() bool {
	return c.DatabaseType == "postgres" || c.DatabaseType == "postgresql"
}

// RedisEnabled reports whether a shared counter store is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

// RedisDBNumber returns REDIS_DB as an int. Call after Validate.
func (c *Config) RedisDBNumber() int {
	n, _ := strconv.Atoi(c.RedisDB)
	return n
}

// RedisPoolSizeNumber returns REDIS_POOL_SIZE as an int. Call after Validate.
func (c *Config) RedisPoolSizeNumber() int {
	n, _ := strconv.Atoi(c.RedisPoolSize)
	return n
}

// RedisTimeoutDuration returns REDIS_TIMEOUT. Call after Validate.
func (c *Config) RedisTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RedisTimeout)
	return d
}

// SweepIntervalDuration returns RATE_LIMIT_SWEEP_INTERVAL. Call after Validate.
func (c *Config) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.RateLimitSweepInterval)
	return d
}

// LockoutMaxAttemptsNumber returns LOCKOUT_MAX_ATTEMPTS. Call after Validate.
func (c *Config) LockoutMaxAttemptsNumber() int {
	n, _ := strconv.Atoi(c.LockoutMaxAttempts)
	return n
}

// LockoutDurationValue returns LOCKOUT_DURATION. Call after Validate.
func (c *Config) LockoutDurationValue() time.Duration {
	d, _ := time.ParseDuration(c.LockoutDuration)
	return d
}

// Validate performs validation on the configuration to ensure all values are
// present and well formed.
//
// This method checks:
//   - Field formats (ports, durations, counts)
//   - Cross-field dependencies (PostgreSQL settings, Redis settings)
//   - Bounds (REDIS_TIMEOUT at most 5s, positive lockout knobs)
//
// All problems are reported together in one validation error.
func (c *Config) Validate() error {
	v := validation.NewValidator()

	v.Validate(func() error { return validatePort("PORT", c.Port) })
	v.RequireOneOf(c.LogFormat, []string{"console", "json"}, "LOG_FORMAT")
	v.RequireOneOf(c.DatabaseType, []string{"sqlite", "postgres", "postgresql"}, "DATABASE_TYPE")

	if c.IsPostgres() {
		v.RequireString(c.PostgresHost, "POSTGRES_HOST").
			RequireString(c.PostgresDB, "POSTGRES_DB").
			RequireString(c.PostgresUser, "POSTGRES_USER").
			Validate(func() error { return validatePort("POSTGRES_PORT", c.PostgresPort) })
	} else {
		v.RequireString(c.DatabasePath, "DATABASE_PATH")
	}

	redis := c.RedisEnabled()
	v.ValidateIf(redis, func() error {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		return nil
	}).ValidateIf(redis, func() error {
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
		return nil
	}).ValidateIf(redis, func() error {
		d, err := time.ParseDuration(c.RedisTimeout)
		if err != nil || d <= 0 || d > MaxRedisTimeout {
			return fmt.Errorf("REDIS_TIMEOUT must be a duration between 0 and %s", MaxRedisTimeout)
		}
		return nil
	})

	v.RequireOneOf(c.RateLimitRuntime, []string{"server", "edge"}, "RATE_LIMIT_RUNTIME")
	v.Validate(func() error {
		if d, err := time.ParseDuration(c.RateLimitSweepInterval); err != nil || d <= 0 {
			return fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must be a positive duration (e.g., '1m')")
		}
		return nil
	})

	v.Validate(func() error {
		if n, err := strconv.Atoi(c.LockoutMaxAttempts); err != nil || n < 1 {
			return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be a positive number")
		}
		return nil
	})
	v.Validate(func() error {
		if d, err := time.ParseDuration(c.LockoutDuration); err != nil || d <= 0 {
			return fmt.Errorf("LOCKOUT_DURATION must be a positive duration (e.g., '15m')")
		}
		return nil
	})

	return v.Error()
}

func validatePort(name, value string) error {
	if port, err := strconv.Atoi(value); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number between 1 and 65535", name)
	}
	return nil
}
