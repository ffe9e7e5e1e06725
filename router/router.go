// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/livepoll/server/cliparse"
	"github.com/livepoll/server/comments"
	"github.com/livepoll/server/events"
	"github.com/livepoll/server/handlers"
	"github.com/livepoll/server/ledger"
	"github.com/livepoll/server/middleware"
	"github.com/livepoll/server/polls"
	"github.com/livepoll/server/ws"
)

func NewRouter(db *sql.DB, bus *events.Bus, hub *ws.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize stores and handlers
	pollHandler := handlers.NewPollHandler(polls.NewStore(db, bus), cfg)
	votingHandler := handlers.NewVotingHandler(ledger.New(db, bus))
	commentHandler := handlers.NewCommentHandler(comments.NewStore(db, bus), cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.Create))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.List))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.Get))
	mux.HandleFunc("PATCH /polls/{id}", middleware.WithLogging(pollHandler.Update))
	mux.HandleFunc("POST /polls/{id}/options", middleware.WithLogging(pollHandler.AddOptions))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.Delete))

	// Voting
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(votingHandler.GetResults))

	// Comments
	mux.HandleFunc("POST /polls/{id}/comments", middleware.WithLogging(commentHandler.Create))
	mux.HandleFunc("GET /polls/{id}/comments", middleware.WithLogging(commentHandler.ListTopLevel))
	mux.HandleFunc("GET /polls/{id}/comments/replies", middleware.WithLogging(commentHandler.ListReplies))
	mux.HandleFunc("PUT /polls/{id}/comments/{commentId}", middleware.WithLogging(commentHandler.Update))
	mux.HandleFunc("DELETE /polls/{id}/comments/{commentId}", middleware.WithLogging(commentHandler.Delete))

	// Live event stream
	mux.Handle("GET /rawws", hub)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return mux
}
