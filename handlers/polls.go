// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/livepoll/server/auth"
	"github.com/livepoll/server/cliparse"
	"github.com/livepoll/server/middleware"
	"github.com/livepoll/server/models"
	"github.com/livepoll/server/polls"
)

type PollHandler struct {
	store *polls.Store
	cfg   cliparse.Config
}

func NewPollHandler(store *polls.Store, cfg cliparse.Config) *PollHandler {
	return &PollHandler{store: store, cfg: cfg}
}

// Create handles POST /polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	validUntil := req.ValidUntil
	if validUntil.IsZero() && req.DurationDays > 0 {
		validUntil = time.Now().Add(time.Duration(req.DurationDays) * 24 * time.Hour)
	}

	poll, err := h.store.Create(r.Context(), polls.CreatePoll{
		Question:        req.Question,
		CreatorID:       userID,
		Visibility:      req.Visibility,
		MaxVotesPerUser: req.MaxVotesPerUser,
		ValidUntil:      validUntil,
		InvitedUsers:    req.InvitedUsers,
		Options:         req.PollOptions,
	})
	if err != nil {
		if errors.Is(err, polls.ErrInvalid) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// List handles GET /polls. Anonymous callers see only PUBLIC polls.
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	list, err := h.store.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

// Get handles GET /polls/{id}
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, _ := auth.UserID(r)

	poll, err := h.store.Get(r.Context(), pollID, userID)
	switch {
	case errors.Is(err, polls.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, polls.ErrNotInvited):
		middleware.ReasonResponse(w, http.StatusForbidden, models.ReasonNotInvited, "Not invited to this poll")
	case err != nil:
		slog.Error("failed to get poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	default:
		middleware.JSONResponse(w, http.StatusOK, poll)
	}
}

// Update handles PATCH /polls/{id}: extend the deadline and/or append
// invites. Creator only.
func (h *PollHandler) Update(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	extendBy := time.Duration(req.ExtendDays) * 24 * time.Hour
	poll, err := h.store.Extend(r.Context(), pollID, userID, extendBy, req.InvitedUsers)
	if h.writeOwnershipError(w, err, pollID) {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// AddOptions handles POST /polls/{id}/options. Creator only.
func (h *PollHandler) AddOptions(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.AddOptionsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.store.AddOptions(r.Context(), pollID, userID, req.PollOptions)
	if h.writeOwnershipError(w, err, pollID) {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// Delete handles DELETE /polls/{id}. Creator only.
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	if err := h.store.Delete(r.Context(), pollID, userID); h.writeOwnershipError(w, err, pollID) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeOwnershipError maps the shared not-found / not-owner outcomes of
// creator-only operations. Returns true if a response was written.
func (h *PollHandler) writeOwnershipError(w http.ResponseWriter, err error, pollID string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, polls.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, polls.ErrNotOwner):
		middleware.ReasonResponse(w, http.StatusForbidden, models.ReasonNotOwner, "Only the poll owner may do this")
	default:
		slog.Error("poll operation failed", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
	return true
}
