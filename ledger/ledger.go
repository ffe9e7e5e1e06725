// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livepoll/server/events"
	"github.com/livepoll/server/models"
)

var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrPollClosed      = errors.New("poll is past its deadline")
	ErrUnknownOption   = errors.New("unknown option")
	ErrVoteCapExceeded = errors.New("vote cap exceeded")
	ErrNotInvited      = errors.New("user not invited to poll")
)

// Ledger owns vote rows and derived tallies. Writes to one poll are
// serialized through a per-poll mutex; reads never take the poll lock.
type Ledger struct {
	db  *sql.DB
	bus *events.Bus
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(db *sql.DB, bus *events.Bus) *Ledger {
	return &Ledger{
		db:    db,
		bus:   bus,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SetClock replaces the deadline clock source, for tests.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

func (l *Ledger) pollLock(pollID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[pollID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[pollID] = lock
	}
	return lock
}

// CastVote records one ballot for (pollID, userID, optionOrder).
//
// Re-submitting an already-held (user, option) pair is a no-op success, so
// the operation is idempotent under client retries. A user holding the
// poll's max distinct options gets ErrVoteCapExceeded for any new option.
// The published vote-delta carries no running total; clients increment
// locally and resync on reconnect.
func (l *Ledger) CastVote(ctx context.Context, pollID, userID string, optionOrder int) error {
	lock := l.pollLock(pollID)
	lock.Lock()
	defer lock.Unlock()

	var visibility string
	var maxVotes int
	var validUntil time.Time
	err := l.db.QueryRowContext(ctx, `
		SELECT visibility, max_votes_per_user, valid_until
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&visibility, &maxVotes, &validUntil)
	if err == sql.ErrNoRows {
		return ErrPollNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}

	if l.now().After(validUntil) {
		return ErrPollClosed
	}

	if visibility == models.VisibilityPrivate {
		var invited bool
		err = l.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM poll_invite WHERE poll_id = $1 AND user_id = $2)
		`, pollID, userID).Scan(&invited)
		if err != nil {
			return fmt.Errorf("failed to check invite: %w", err)
		}
		if !invited {
			return ErrNotInvited
		}
	}

	var optionExists bool
	err = l.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM vote_option WHERE poll_id = $1 AND presentation_order = $2)
	`, pollID, optionOrder).Scan(&optionExists)
	if err != nil {
		return fmt.Errorf("failed to check option: %w", err)
	}
	if !optionExists {
		return ErrUnknownOption
	}

	var alreadyCast bool
	err = l.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM vote WHERE poll_id = $1 AND user_id = $2 AND option_order = $3)
	`, pollID, userID, optionOrder).Scan(&alreadyCast)
	if err != nil {
		return fmt.Errorf("failed to check existing vote: %w", err)
	}
	if alreadyCast {
		// Idempotent re-submit, not double-counted
		return nil
	}

	var held int
	err = l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&held)
	if err != nil {
		return fmt.Errorf("failed to count votes: %w", err)
	}
	if held >= maxVotes {
		return ErrVoteCapExceeded
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO vote (poll_id, user_id, option_order, cast_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, userID, optionOrder, l.now())
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	slog.Info("vote cast", "poll_id", pollID, "user_id", userID, "option_order", optionOrder)

	voter := userID
	l.bus.Publish(models.WsEvent{
		Type:        models.EventVoteDelta,
		PollID:      pollID,
		OptionOrder: optionOrder,
		VoterUserID: &voter,
		TS:          l.now().UnixMilli(),
	})

	return nil
}

// Tallies returns caption -> vote count for a poll, zero-seeded for every
// option so captions without votes still appear. Options not in the poll's
// option list never appear. The read is a snapshot; it reflects every vote
// committed before the call and does not block concurrent casts.
func (l *Ledger) Tallies(ctx context.Context, pollID string) (map[string]int, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check poll: %w", err)
	}
	if !exists {
		return nil, ErrPollNotFound
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT o.caption, COUNT(v.option_order)
		FROM vote_option o
		LEFT JOIN vote v
		  ON v.poll_id = o.poll_id AND v.option_order = o.presentation_order
		WHERE o.poll_id = $1
		GROUP BY o.caption
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	tallies := make(map[string]int)
	for rows.Next() {
		var caption string
		var count int
		if err := rows.Scan(&caption, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies[caption] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tallies, nil
}
