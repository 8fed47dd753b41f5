package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"research-hub/internal/common/errors"
)

// HTTPMiddleware throttles requests under the named policy. Every response
// carries the X-RateLimit-* headers; denied requests get 429 with Retry-After
// and never reach next.
func HTTPMiddleware(limiter *Limiter, name PolicyName, keyFunc KeyFunc) func(http.Handler) http.Handler {
	policy, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("ratelimit: unknown policy %q", name))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.CheckPolicy(r.Context(), keyFunc(r), policy)
			WriteHeaders(w, decision, limiter.Now())

			if !decision.Success {
				appErr := errors.RateLimitError(string(name))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.HTTPStatus())
				_ = json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteHeaders sets the rate limit response headers for decision.
// X-RateLimit-Reset is in epoch seconds.
func WriteHeaders(w http.ResponseWriter, decision Decision, now time.Time) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetTime.Unix(), 10))

	if !decision.Success {
		h.Set("Retry-After", strconv.Itoa(decision.RetryAfter(now)))
	}
}
