package ratelimit

import (
	"context"
	"time"
)

// Store is a fixed-window counter keyed by string. Observe records one
// attempt against key and reports whether it fits within limit for the
// current window. Implementations never fail; an unreachable backend is
// handled inside the store.
type Store interface {
	Observe(ctx context.Context, key string, limit int, window time.Duration) Decision
}

// SharedCounter is an external atomic increment-with-expiry primitive.
// The first increment of a window (no live counter, or its reset time is not
// after now) starts a new window ending at now+window. It returns the
// post-increment count and the window's reset time.
type SharedCounter interface {
	IncrementWithExpiry(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Time, error)
}

// Clock returns the current time
type Clock func() time.Time

// wallClock drops the monotonic reading so that times compare the same way
// whether they came from this process or from a shared store.
func wallClock() time.Time {
	return time.Now().Round(0)
}
