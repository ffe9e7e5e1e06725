// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger enforces per-user voting limits and produces authoritative
tallies.

# Casting

	l := ledger.New(db, bus)
	err := l.CastVote(ctx, pollID, userID, optionOrder)

CastVote rejects with ErrPollClosed, ErrUnknownOption, ErrVoteCapExceeded or
ErrNotInvited; an exact duplicate of an accepted vote is a silent no-op, so
retries are safe. Each accepted vote publishes a vote-delta event carrying
the poll id and option order only — clients increment their local counters
and resync from Tallies after a reconnect.

# Concurrency

Writes to one poll go through a per-poll mutex, so counter updates are never
lost under concurrent casts; different polls proceed fully in parallel.
Tallies reads are unlocked snapshots.
*/
package ledger
