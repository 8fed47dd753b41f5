package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"research-hub/internal/common/logging"
	"research-hub/internal/common/ratelimit"
	"research-hub/internal/handlers"
	"research-hub/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, limiter *ratelimit.Limiter, logger logging.Logger) {
	router.Use(middleware.LoggingMiddleware(logger))

	throttled := func(policy ratelimit.PolicyName, key ratelimit.KeyFunc, fn http.HandlerFunc) http.Handler {
		return ratelimit.HTTPMiddleware(limiter, policy, key)(fn)
	}

	// Account endpoints are keyed by caller IP
	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/auth/signup", throttled(ratelimit.PolicySignup, ratelimit.IPKey, h.HandleSignup)).Methods("POST")
	api.Handle("/auth/login", throttled(ratelimit.PolicyAuth, ratelimit.IPKey, h.HandleLogin)).Methods("POST")
	api.Handle("/auth/forgot-password", throttled(ratelimit.PolicyPasswordReset, ratelimit.IPKey, h.HandleForgotPassword)).Methods("POST")

	// Content endpoints are keyed by user, falling back to IP
	api.Handle("/wiki/submissions", throttled(ratelimit.PolicyWikiSubmission, ratelimit.UserKey, h.HandleWikiSubmission)).Methods("POST")
	api.Handle("/social/connect", throttled(ratelimit.PolicySocialConnect, ratelimit.UserKey, h.HandleSocialConnect)).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
