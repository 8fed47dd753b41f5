package ratelimit

import (
	"context"
	"fmt"
	"time"

	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
)

// Limiter applies named policies to caller identifiers
type Limiter struct {
	config  Config
	local   *LocalStore
	store   Store
	shared  *DistributedStore
	sweeper *Sweeper
	now     Clock
	logger  logging.Logger
}

// Option customizes a Limiter
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New creates a limiter. A nil shared counter runs on process-local counters
// only; otherwise the shared store is used with the local table as fallback.
func New(config Config, shared SharedCounter, logger logging.Logger, opts ...Option) (*Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	o := options{clock: wallClock}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Limiter{
		config: config,
		local:  NewLocalStore(config.Shards, config.PurgeEvery, o.clock),
		now:    o.clock,
		logger: logger.WithFields(logging.String("component", "ratelimit")),
	}

	l.store = l.local
	if shared != nil {
		l.shared = NewDistributedStore(shared, l.local, config.SharedTimeout, config.Breaker, o.clock, l.logger)
		l.store = l.shared
	}

	if config.Runtime == RuntimeServer {
		l.sweeper = NewSweeper(l.local, config.SweepInterval, l.logger)
	}

	return l, nil
}

// Start launches background work for the server runtime; it is a no-op on edge
func (l *Limiter) Start() error {
	if l.sweeper == nil {
		return nil
	}
	return l.sweeper.Start()
}

// Close stops background work
func (l *Limiter) Close() error {
	if l.sweeper != nil {
		l.sweeper.Stop()
	}
	return nil
}

// Key builds the counter key for a policy and identifier
func (l *Limiter) Key(policy PolicyName, identifier string) string {
	return l.config.KeyPrefix + string(policy) + ":" + identifier
}

// Check applies the named policy to identifier. The error is reserved for an
// unknown policy name; a throttled caller is reported through the decision.
func (l *Limiter) Check(ctx context.Context, identifier string, name PolicyName) (Decision, error) {
	policy, ok := Lookup(name)
	if !ok {
		return Decision{}, errors.ValidationError(fmt.Sprintf("unknown rate limit policy %q", name))
	}
	return l.CheckPolicy(ctx, identifier, policy), nil
}

// CheckPolicy applies policy to identifier
func (l *Limiter) CheckPolicy(ctx context.Context, identifier string, policy Policy) Decision {
	if !l.config.Enabled {
		return Decision{
			Success:   true,
			Limit:     policy.Limit,
			Remaining: policy.Limit,
			ResetTime: l.now().Add(policy.Window),
		}
	}

	decision := l.store.Observe(ctx, l.Key(policy.Name, identifier), policy.Limit, policy.Window)
	if !decision.Success {
		l.logger.WithContext(ctx).Warn("rate limit exceeded",
			logging.String("identifier", identifier),
			logging.String("policy", string(policy.Name)),
			logging.Int("limit", policy.Limit),
			logging.Time("reset_at", decision.ResetTime),
		)
	}
	return decision
}

// Now returns the limiter's current time
func (l *Limiter) Now() time.Time {
	return l.now()
}

// Stats returns limiter diagnostics
func (l *Limiter) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"enabled":    l.config.Enabled,
		"runtime":    string(l.config.Runtime),
		"shared":     l.shared != nil,
		"local_keys": l.local.Len(),
	}
	if l.shared != nil {
		stats["breaker_state"] = l.shared.BreakerState()
	}
	return stats
}
