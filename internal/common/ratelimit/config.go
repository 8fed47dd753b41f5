package ratelimit

import (
	"fmt"
	"time"

	"research-hub/internal/circuitbreaker"
	"research-hub/internal/common/errors"
	"research-hub/internal/common/validation"
)

// Runtime selects how expired counters are reclaimed
type Runtime string

const (
	// RuntimeServer is a long-lived process: a periodic sweeper runs and the
	// in-line purge is rare.
	RuntimeServer Runtime = "server"
	// RuntimeEdge has no background timers between invocations, so purging
	// happens in-line on a small fraction of calls.
	RuntimeEdge Runtime = "edge"
)

const (
	defaultServerPurgeEvery = 1000
	defaultEdgePurgeEvery   = 20
	defaultShards           = 32
	defaultSharedTimeout    = 2 * time.Second
	maxSharedTimeout        = 5 * time.Second
	defaultSweepInterval    = time.Minute
)

// Config represents rate limiter configuration
type Config struct {
	Enabled bool    `json:"enabled"`
	Runtime Runtime `json:"runtime"`

	// KeyPrefix is prepended to every counter key
	KeyPrefix string `json:"key_prefix"`

	// SharedTimeout bounds each call to the shared counter store
	SharedTimeout time.Duration `json:"shared_timeout"`

	// SweepInterval is the period of the background purge (server runtime only)
	SweepInterval time.Duration `json:"sweep_interval"`

	// PurgeEvery runs an in-line purge on every Nth observation; zero picks
	// the runtime default.
	PurgeEvery int `json:"purge_every,omitempty"`

	// Shards is the number of lock shards in the local counter table
	Shards int `json:"shards,omitempty"`

	// Breaker guards the shared counter store
	Breaker circuitbreaker.Config `json:"-"`
}

// Validate validates the configuration and fills in runtime defaults
func (c *Config) Validate() error {
	// Zero means "use the default"; negative values are mistakes.
	if err := validation.NewValidatorWithPrefix("ratelimit").
		RequireNonNegative(c.PurgeEvery, "purge every").
		RequireNonNegative(c.Shards, "shards").
		Error(); err != nil {
		return err
	}

	if c.Runtime == "" {
		c.Runtime = RuntimeServer
	}

	switch c.Runtime {
	case RuntimeServer:
		if c.PurgeEvery <= 0 {
			c.PurgeEvery = defaultServerPurgeEvery
		}
		if c.SweepInterval <= 0 {
			c.SweepInterval = defaultSweepInterval
		}
	case RuntimeEdge:
		if c.PurgeEvery <= 0 {
			c.PurgeEvery = defaultEdgePurgeEvery
		}
	default:
		return errors.ConfigError(fmt.Sprintf("unsupported rate limiter runtime: %s", c.Runtime))
	}

	if c.Shards <= 0 {
		c.Shards = defaultShards
	}

	if c.SharedTimeout <= 0 {
		c.SharedTimeout = defaultSharedTimeout
	}
	if c.SharedTimeout > maxSharedTimeout {
		return errors.ConfigError(fmt.Sprintf("shared store timeout %s exceeds maximum of %s", c.SharedTimeout, maxSharedTimeout))
	}

	if c.Breaker == (circuitbreaker.Config{}) {
		c.Breaker = circuitbreaker.SharedStoreConfig
	}

	return nil
}

// DefaultConfig returns a default rate limiter configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Runtime:       RuntimeServer,
		KeyPrefix:     "ratelimit:",
		SharedTimeout: defaultSharedTimeout,
		SweepInterval: defaultSweepInterval,
		PurgeEvery:    defaultServerPurgeEvery,
		Shards:        defaultShards,
		Breaker:       circuitbreaker.SharedStoreConfig,
	}
}

// ConfigBuilder provides a fluent interface for building rate limiter configurations
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new configuration builder with defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// WithEnabled toggles rate limiting
func (cb *ConfigBuilder) WithEnabled(enabled bool) *ConfigBuilder {
	cb.config.Enabled = enabled
	return cb
}

// WithKeyPrefix sets the counter key prefix
func (cb *ConfigBuilder) WithKeyPrefix(prefix string) *ConfigBuilder {
	cb.config.KeyPrefix = prefix
	return cb
}

// WithSharedTimeout sets the per-call budget for the shared store
func (cb *ConfigBuilder) WithSharedTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.SharedTimeout = timeout
	return cb
}

// WithSweepInterval sets the background purge period
func (cb *ConfigBuilder) WithSweepInterval(interval time.Duration) *ConfigBuilder {
	cb.config.SweepInterval = interval
	return cb
}

// ForEdge configures the edge runtime. The purge cadence is reset so that
// Validate picks the edge default.
func (cb *ConfigBuilder) ForEdge() *ConfigBuilder {
	cb.config.Runtime = RuntimeEdge
	cb.config.PurgeEvery = 0
	cb.config.SweepInterval = 0
	return cb
}

// ForServer configures the long-lived server runtime
func (cb *ConfigBuilder) ForServer() *ConfigBuilder {
	cb.config.Runtime = RuntimeServer
	cb.config.PurgeEvery = 0
	return cb
}

// Build validates and returns the final configuration
func (cb *ConfigBuilder) Build() (Config, error) {
	cfg := cb.config
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
