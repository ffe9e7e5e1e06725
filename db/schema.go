// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the subset both drivers (modernc sqlite, lib/pq) accept:
// no NOW() defaults, timestamps are always bound explicitly by the caller.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    creator_id TEXT NOT NULL,
    visibility TEXT NOT NULL DEFAULT 'PUBLIC' CHECK (visibility IN ('PUBLIC', 'PRIVATE')),
    max_votes_per_user INTEGER NOT NULL DEFAULT 1,
    valid_until TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Invite set, meaningful only for PRIVATE polls
CREATE TABLE IF NOT EXISTS poll_invite (
    poll_id TEXT NOT NULL REFERENCES poll(id),
    user_id TEXT NOT NULL,
    PRIMARY KEY (poll_id, user_id)
);

-- Options; presentation_order is the stable wire key
CREATE TABLE IF NOT EXISTS vote_option (
    poll_id TEXT NOT NULL REFERENCES poll(id),
    caption TEXT NOT NULL,
    presentation_order INTEGER NOT NULL,
    PRIMARY KEY (poll_id, presentation_order)
);

-- Votes; the primary key doubles as the idempotence backstop
CREATE TABLE IF NOT EXISTS vote (
    poll_id TEXT NOT NULL REFERENCES poll(id),
    user_id TEXT NOT NULL,
    option_order INTEGER NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    PRIMARY KEY (poll_id, user_id, option_order)
);

CREATE INDEX IF NOT EXISTS idx_vote_poll_user ON vote(poll_id, user_id);

-- Comments form a forest per poll. parent_id carries no REFERENCES clause:
-- deleting a comment leaves its replies as orphans, still paginable by parent.
CREATE TABLE IF NOT EXISTS comment (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id),
    author_id TEXT NOT NULL,
    parent_id TEXT,
    content TEXT NOT NULL,
    seq INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comment_poll_parent ON comment(poll_id, parent_id);
`
