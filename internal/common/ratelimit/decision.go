package ratelimit

import (
	"math"
	"time"
)

// Decision is the outcome of one throttling check
type Decision struct {
	Success   bool      `json:"success"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// newDecision derives a decision from the post-increment count of a window
func newDecision(limit, count int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Success:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetAt,
	}
}

// RetryAfter returns the whole seconds a denied caller should wait, never
// less than one.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(d.ResetTime.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
