package ratelimit

import (
	"context"
	stderrors "errors"
	"time"

	"research-hub/internal/circuitbreaker"
	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
)

// DistributedStore runs the fixed-window algorithm against a SharedCounter so
// that every process instance sees the same counts. Any failure, timeout or
// open breaker falls back to the wrapped LocalStore.
type DistributedStore struct {
	shared   SharedCounter
	fallback *LocalStore
	breaker  *circuitbreaker.GoBreakerAdapter
	timeout  time.Duration
	now      Clock
	logger   logging.Logger
}

type sharedResult struct {
	count   int64
	resetAt time.Time
}

// NewDistributedStore wraps shared with a breaker and a local fallback
func NewDistributedStore(shared SharedCounter, fallback *LocalStore, timeout time.Duration, breaker circuitbreaker.Config, now Clock, logger logging.Logger) *DistributedStore {
	if now == nil {
		now = wallClock
	}
	if timeout <= 0 {
		timeout = defaultSharedTimeout
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &DistributedStore{
		shared:   shared,
		fallback: fallback,
		breaker:  circuitbreaker.NewGoBreaker("ratelimit-shared-store", breaker, logger),
		timeout:  timeout,
		now:      now,
		logger:   logger,
	}
}

// Observe records one attempt against key in the shared store
func (d *DistributedStore) Observe(ctx context.Context, key string, limit int, window time.Duration) Decision {
	now := d.now()

	result, err := d.breaker.Execute(func() (interface{}, error) {
		// Caller cancellation is not a store failure; only the timeout bounds the call.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		count, resetAt, err := d.shared.IncrementWithExpiry(callCtx, key, window, now)
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.TimeoutError("shared counter increment").WithContext("timeout", d.timeout.String())
		}
		if err != nil {
			return nil, err
		}
		return sharedResult{count: count, resetAt: resetAt}, nil
	})
	if err != nil {
		if circuitbreaker.IsRejected(err) {
			// The transition to open was already logged by the breaker.
			d.logger.Debug("shared rate limit store bypassed, using local counters",
				logging.String("key", key),
			)
		} else {
			d.logger.Warn("shared rate limit store unavailable, using local counters",
				logging.String("key", key),
				logging.Err(err),
			)
		}
		return d.fallback.Observe(ctx, key, limit, window)
	}

	r := result.(sharedResult)
	return newDecision(limit, int(r.count), r.resetAt)
}

// BreakerState reports the shared store breaker state
func (d *DistributedStore) BreakerState() string {
	return d.breaker.State()
}

var _ Store = (*DistributedStore)(nil)
