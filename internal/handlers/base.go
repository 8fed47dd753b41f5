package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"research-hub/internal/auth"
	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
	"research-hub/internal/common/ratelimit"
	"research-hub/internal/common/validation"
	"research-hub/internal/storage"
)

const maxBodyBytes = 1 << 20

// HealthChecker is implemented by optional dependencies reported on /health
type HealthChecker interface {
	Health() error
}

type Handlers struct {
	storage   storage.Storage
	auth      *auth.Authenticator
	limiter   *ratelimit.Limiter
	redis     HealthChecker
	validator *validation.StructValidator
	now       func() time.Time
	logger    logging.Logger
}

// New creates the HTTP handlers. redis may be nil in local-only mode.
func New(store storage.Storage, authenticator *auth.Authenticator, limiter *ratelimit.Limiter, redis HealthChecker, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		storage:   store,
		auth:      authenticator,
		limiter:   limiter,
		redis:     redis,
		validator: validation.NewStructValidator(),
		now:       time.Now,
		logger:    logger.WithFields(logging.String("component", "handlers")),
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ValidationError("invalid request body")
	}
	return h.validator.ValidateStruct(dst)
}

func (h *Handlers) sendJSONResponse(w http.ResponseWriter, data interface{}) {
	h.sendJSONResponseWithStatus(w, http.StatusOK, data)
}

func (h *Handlers) sendJSONResponseWithStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", err)
	}
}

// sendAppError maps err to its HTTP status. Messages of unexpected errors are
// logged and replaced with a generic one.
func (h *Handlers) sendAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)

	body := map[string]string{"error": "internal server error"}
	if appErr, ok := errors.As(err); ok && status != http.StatusInternalServerError {
		body["error"] = appErr.Message
		if appErr.Code != "" {
			body["code"] = appErr.Code
		}
	} else {
		h.logger.WithContext(r.Context()).Error("request failed", err,
			logging.String("path", r.URL.Path),
		)
	}

	h.sendJSONResponseWithStatus(w, status, body)
}

// requireUserID returns the caller id set by the upstream gateway
func (h *Handlers) requireUserID(r *http.Request) (string, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return "", errors.AuthError("authentication required")
	}
	return id, nil
}
