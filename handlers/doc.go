// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the LivePoll API.

# Handler Types

Each handler is a struct wrapping a domain store plus config dependencies:

  - PollHandler: Poll lifecycle (create, list, get, extend, add options, delete)
  - VotingHandler: Vote casting and tally retrieval
  - CommentHandler: Threaded comments with cursor pagination

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(pollStore, cfg)
	votingHandler := handlers.NewVotingHandler(voteLedger)
	commentHandler := handlers.NewCommentHandler(commentStore, cfg)

# Identity

The acting user is taken from the X-User-ID header on every mutating
request. Requests without it get 401. Read endpoints for PUBLIC polls
work anonymously; PRIVATE polls require an invited user.

# Error Shape

Failures return the shared error envelope:

	{"error": "Forbidden", "message": "..."}

Domain rejections additionally carry a machine-readable reason code in
the error field, e.g. POLL_CLOSED, VOTE_CAP_EXCEEDED, NOT_INVITED,
UNKNOWN_OPTION, NOT_OWNER, NOT_AUTHORIZED.

# Vote Flow

	POST /polls/{id}/votes   → CastVote   (200 {"accepted": true}, idempotent)
	GET  /polls/{id}/results → GetResults (caption → count, zero-seeded)

# Comment Flow

	POST /polls/{id}/comments                      → Create
	GET  /polls/{id}/comments?offset=&limit=       → ListTopLevel (newest first)
	GET  /polls/{id}/comments/replies?parentId=    → ListReplies  (oldest first)
	PUT  /polls/{id}/comments/{commentId}          → Update (author only)
	DELETE /polls/{id}/comments/{commentId}        → Delete (author or poll owner)

Page responses are {items, total, hasMore, nextOffset}; clients resume
with nextOffset so successive pages never overlap.
*/
package handlers
