package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
	"research-hub/internal/storage"
)

const passwordResetTTL = time.Hour

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleSignup creates an account
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeConflict) {
			err = errors.ConflictError("email or username already registered", err)
		}
		h.sendAppError(w, r, err)
		return
	}

	h.logger.WithContext(r.Context()).Info("user signed up", logging.String("account_id", user.ID))
	h.sendJSONResponseWithStatus(w, http.StatusCreated, user)
}

// HandleLogin checks credentials. Every failure is the same 401.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendAppError(w, r, err)
		return
	}

	h.sendJSONResponse(w, user)
}

// HandleForgotPassword records a reset request when the email belongs to an
// account. The response does not reveal whether it does.
func (h *Handlers) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	ctx := r.Context()
	user, err := h.storage.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		now := h.now()
		reset := &storage.PasswordReset{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: now.Add(passwordResetTTL),
			CreatedAt: now,
		}
		if err := h.storage.CreatePasswordReset(ctx, reset); err != nil {
			h.logger.WithContext(ctx).Error("failed to store password reset", err, logging.String("account_id", user.ID))
		}
	case !errors.IsType(err, errors.ErrTypeNotFound):
		h.logger.WithContext(ctx).Error("failed to look up account for password reset", err)
	}

	h.sendJSONResponseWithStatus(w, http.StatusAccepted, map[string]string{
		"message": "if the account exists, a password reset has been issued",
	})
}
