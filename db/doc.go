// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema

CreateSchema creates all tables using CREATE TABLE IF NOT EXISTS, so it is
safe to call on every startup:

	if err := db.CreateSchema(dbConn); err != nil {
		// ...
	}

# Tables

  - poll: question, creator, visibility, vote cap, deadline
  - poll_invite: user ids invited to a PRIVATE poll
  - vote_option: caption + presentation order per poll
  - vote: one row per (poll, user, option) ballot
  - comment: threaded comment forest with per-poll insertion sequence

# Driver Portability

The server runs against SQLite (modernc.org/sqlite) or PostgreSQL (lib/pq).
All SQL in this repo uses $1 placeholders and binds timestamps explicitly,
which both drivers accept.
*/
package db
