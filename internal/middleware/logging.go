package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"research-hub/internal/common/logging"
	"research-hub/internal/common/ratelimit"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware assigns a request id, stores it and the caller IP in the
// request context, and logs method, path, status and duration.
func LoggingMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithClientIP(ctx, ratelimit.ClientIP(r.Header))
			r = r.WithContext(ctx)

			// Wrap the ResponseWriter to capture status code
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.statusCode),
				logging.Duration("duration", time.Since(start)),
			}

			if ua := r.Header.Get("User-Agent"); ua != "" {
				fields = append(fields, logging.String("user_agent", ua))
			}

			if userID := r.Header.Get("X-User-ID"); userID != "" {
				fields = append(fields, logging.String("user_id", userID))
			}

			reqLogger := logger.WithContext(ctx)
			if wrapped.statusCode >= 500 {
				reqLogger.Error("HTTP request completed", nil, fields...)
			} else if wrapped.statusCode >= 400 {
				reqLogger.Warn("HTTP request completed", fields...)
			} else {
				reqLogger.Info("HTTP request completed", fields...)
			}
		})
	}
}
