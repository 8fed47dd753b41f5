// Package ratelimit throttles security-sensitive requests with fixed-window
// counters under a small set of named policies.
//
// # Basic Usage
//
//	limiter, err := ratelimit.New(ratelimit.DefaultConfig(), nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer limiter.Close()
//
//	decision, err := limiter.Check(ctx, clientIP, ratelimit.PolicyAuth)
//	if err != nil {
//		// unknown policy name
//	}
//	if !decision.Success {
//		// reject, retry after decision.RetryAfter(now) seconds
//	}
//
// # Policies
//
// Policies are fixed in code and cannot be changed at runtime:
//
//	auth             5 per 15 minutes
//	signup           3 per hour
//	wiki_submission 10 per hour
//	social_connect  20 per hour
//	password_reset   3 per hour
//
// Counters are keyed by "<prefix><policy>:<identifier>", so the same caller
// has an independent quota under each policy even when two policies share a
// window length.
//
// # Algorithm
//
// The first attempt for a key opens a window ending at now+window. Every
// attempt, admitted or not, increments the count; attempts past the limit are
// denied until the window ends. Denials never extend the window. Across a
// window boundary up to twice the limit may be admitted in quick succession.
//
// # Stores
//
//   - LocalStore: an in-process table split into xxhash-selected shards with
//     one mutex each. Expired entries are purged on every Nth call and, in the
//     server runtime, by a cron-driven Sweeper.
//   - DistributedStore: the same algorithm executed by a SharedCounter (the
//     Redis client) so that all instances agree. Calls are bounded by a
//     timeout and guarded by a circuit breaker; on any failure the request is
//     counted in the LocalStore instead.
//
// # Runtimes
//
// RuntimeServer runs the periodic sweeper and purges in-line on one call in
// 1000. RuntimeEdge starts no goroutines and purges in-line on one call in
// 20, for hosts that cannot keep timers alive between invocations.
//
// # HTTP Middleware
//
//	mw := ratelimit.HTTPMiddleware(limiter, ratelimit.PolicySignup, ratelimit.IPKey)
//	router.Handle("/api/auth/signup", mw(signupHandler))
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset (epoch seconds) on every response and answers denied
// requests with 429 and Retry-After.
package ratelimit
