// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the LivePoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, bus, hub, cfg)

# Endpoints

Health:

	GET /health

Poll management (mutations require X-User-ID):

	POST   /polls              - Create poll
	GET    /polls              - List visible polls
	GET    /polls/{id}         - Poll details with options
	PATCH  /polls/{id}         - Extend deadline, add invites (creator only)
	POST   /polls/{id}/options - Append options (creator only)
	DELETE /polls/{id}         - Delete poll and its data (creator only)

Voting:

	POST /polls/{id}/votes   - Cast a vote (idempotent per option)
	GET  /polls/{id}/results - Tallies, every option present

Comments:

	POST   /polls/{id}/comments              - Add comment or reply
	GET    /polls/{id}/comments              - Top-level page, newest first
	GET    /polls/{id}/comments/replies      - Reply page for parentId, oldest first
	PUT    /polls/{id}/comments/{commentId}  - Edit (author only)
	DELETE /polls/{id}/comments/{commentId}  - Delete (author or poll owner)

Live events:

	GET /rawws - WebSocket upgrade; every connection receives all events

# Handler Initialization

The router wires each handler to its domain store, sharing one *sql.DB
and one event bus:

	pollHandler := handlers.NewPollHandler(polls.NewStore(db, bus), cfg)
	votingHandler := handlers.NewVotingHandler(ledger.New(db, bus))
	commentHandler := handlers.NewCommentHandler(comments.NewStore(db, bus), cfg)

The WebSocket hub is constructed by the caller so it can be shut down
independently of the HTTP server.
*/
package router
