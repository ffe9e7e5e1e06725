// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/livepoll/server/auth"
	"github.com/livepoll/server/cliparse"
	"github.com/livepoll/server/comments"
	"github.com/livepoll/server/middleware"
	"github.com/livepoll/server/models"
)

type CommentHandler struct {
	store *comments.Store
	cfg   cliparse.Config
}

func NewCommentHandler(store *comments.Store, cfg cliparse.Config) *CommentHandler {
	return &CommentHandler{store: store, cfg: cfg}
}

// Create handles POST /polls/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	comment, err := h.store.Add(r.Context(), pollID, userID, req.Content, req.ParentID)
	switch {
	case errors.Is(err, comments.ErrEmptyContent):
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
	case errors.Is(err, comments.ErrPollNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, comments.ErrParentNotFound):
		middleware.ErrorResponse(w, http.StatusBadRequest, "parent comment not found in this poll")
	case err != nil:
		slog.Error("failed to add comment", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add comment")
	default:
		middleware.JSONResponse(w, http.StatusCreated, comment)
	}
}

// ListTopLevel handles GET /polls/{id}/comments?offset=&limit=
func (h *CommentHandler) ListTopLevel(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", h.cfg.TopPageLimit)

	page, err := h.store.ListTopLevel(r.Context(), pollID, offset, limit)
	if err != nil {
		slog.Error("failed to list comments", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// ListReplies handles GET /polls/{id}/comments/replies?parentId=&offset=&limit=
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	parentID := r.URL.Query().Get("parentId")
	if parentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "parentId is required")
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", h.cfg.ReplyPageLimit)

	page, err := h.store.ListReplies(r.Context(), pollID, parentID, offset, limit)
	if err != nil {
		slog.Error("failed to list replies", "error", err, "poll_id", pollID, "parent_id", parentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// Update handles PUT /polls/{id}/comments/{commentId}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	commentID := r.PathValue("commentId")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var req models.UpdateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	comment, err := h.store.Edit(r.Context(), pollID, commentID, userID, req.Content)
	switch {
	case errors.Is(err, comments.ErrEmptyContent):
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
	case errors.Is(err, comments.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, comments.ErrNotOwner):
		middleware.ReasonResponse(w, http.StatusForbidden, models.ReasonNotOwner, "Only the author may edit a comment")
	case err != nil:
		slog.Error("failed to edit comment", "error", err, "comment_id", commentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to edit comment")
	default:
		middleware.JSONResponse(w, http.StatusOK, comment)
	}
}

// Delete handles DELETE /polls/{id}/comments/{commentId}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	commentID := r.PathValue("commentId")
	userID, err := auth.UserID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	err = h.store.Delete(r.Context(), pollID, commentID, userID)
	switch {
	case errors.Is(err, comments.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, comments.ErrNotAuthorized):
		middleware.ReasonResponse(w, http.StatusForbidden, models.ReasonNotAuthorized, "Only the author or the poll owner may delete a comment")
	case err != nil:
		slog.Error("failed to delete comment", "error", err, "comment_id", commentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete comment")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
