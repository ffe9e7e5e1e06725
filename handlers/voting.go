// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/livepoll/server/auth"
	"github.com/livepoll/server/ledger"
	"github.com/livepoll/server/middleware"
	"github.com/livepoll/server/models"
)

type VotingHandler struct {
	ledger *ledger.Ledger
}

func NewVotingHandler(l *ledger.Ledger) *VotingHandler {
	return &VotingHandler{ledger: l}
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err = h.ledger.CastVote(r.Context(), pollID, userID, req.OptionOrder)
	switch {
	case errors.Is(err, ledger.ErrPollNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, ledger.ErrPollClosed):
		middleware.ReasonResponse(w, http.StatusConflict, models.ReasonPollClosed, "Poll is past its deadline")
	case errors.Is(err, ledger.ErrUnknownOption):
		middleware.ReasonResponse(w, http.StatusBadRequest, models.ReasonUnknownOption, "Option is not part of this poll")
	case errors.Is(err, ledger.ErrVoteCapExceeded):
		middleware.ReasonResponse(w, http.StatusConflict, models.ReasonVoteCapExceeded, "Vote cap reached for this poll")
	case errors.Is(err, ledger.ErrNotInvited):
		middleware.ReasonResponse(w, http.StatusForbidden, models.ReasonNotInvited, "Not invited to this poll")
	case err != nil:
		slog.Error("failed to cast vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
	default:
		middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{Accepted: true})
	}
}

// GetResults handles GET /polls/{id}/results
func (h *VotingHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	tallies, err := h.ledger.Tallies(r.Context(), pollID)
	switch {
	case errors.Is(err, ledger.ErrPollNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case err != nil:
		slog.Error("failed to read tallies", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	default:
		middleware.JSONResponse(w, http.StatusOK, tallies)
	}
}
