// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the LivePoll API server.

LivePoll is a real-time group polling service: polls with per-user vote
caps, threaded comments with cursor pagination, and a WebSocket stream
that fans every state change out to connected clients.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=livepoll.db go run main.go

Or with flags:

	go run main.go -p 8080 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - TOP_PAGE_LIMIT (--top-limit): Default top-level comment page size (default: 5)
  - REPLY_PAGE_LIMIT (--reply-limit): Default reply page size (default: 3)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, comments)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types and wire events
  - polls: Poll store (lifecycle, visibility, invites)
  - ledger: Vote ledger (caps, idempotence, tallies)
  - comments: Threaded comment store with paging
  - events: In-process event bus with bounded fanout
  - ws: WebSocket hub and reconnecting client
  - auth: Identity extraction and ID generation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
