package handlers

import (
	"net/http"

	"research-hub/internal/common/logging"
	"research-hub/internal/storage"
)

type WikiSubmissionRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required,max=50000"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

type SocialConnectRequest struct {
	Provider          string `json:"provider" validate:"required,oneof=github gitlab orcid linkedin twitter"`
	ProviderAccountID string `json:"provider_account_id" validate:"required,max=128"`
	Handle            string `json:"handle" validate:"omitempty,max=64"`
}

// HandleWikiSubmission stores a pending wiki entry for review
func (h *Handlers) HandleWikiSubmission(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUserID(r)
	if err != nil {
		h.sendAppError(w, r, err)
		return
	}

	var req WikiSubmissionRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	submission := &storage.WikiSubmission{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		SourceURL: req.SourceURL,
		Status:    storage.SubmissionPending,
		CreatedAt: h.now(),
	}
	if err := h.storage.CreateWikiSubmission(r.Context(), submission); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	h.logger.WithContext(r.Context()).Info("wiki submission received",
		logging.String("submission_id", submission.ID),
		logging.String("account_id", userID),
	)
	h.sendJSONResponseWithStatus(w, http.StatusCreated, submission)
}

// HandleSocialConnect links an external profile to the caller
func (h *Handlers) HandleSocialConnect(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUserID(r)
	if err != nil {
		h.sendAppError(w, r, err)
		return
	}

	var req SocialConnectRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	account := &storage.SocialAccount{
		UserID:            userID,
		Provider:          req.Provider,
		ProviderAccountID: req.ProviderAccountID,
		Handle:            req.Handle,
		CreatedAt:         h.now(),
	}
	if err := h.storage.LinkSocialAccount(r.Context(), account); err != nil {
		h.sendAppError(w, r, err)
		return
	}

	h.sendJSONResponseWithStatus(w, http.StatusCreated, account)
}
