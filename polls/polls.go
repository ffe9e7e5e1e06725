// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/livepoll/server/auth"
	"github.com/livepoll/server/events"
	"github.com/livepoll/server/models"
)

var (
	ErrInvalid    = errors.New("invalid poll")
	ErrNotFound   = errors.New("poll not found")
	ErrNotInvited = errors.New("user not invited to poll")
	ErrNotOwner   = errors.New("user is not the poll owner")
)

// CreatePoll carries the validated input for Store.Create.
type CreatePoll struct {
	Question        string
	CreatorID       string
	Visibility      string
	MaxVotesPerUser int
	ValidUntil      time.Time
	InvitedUsers    []string
	Options         []models.VoteOption
}

// Store owns poll, option and invite rows. Vote and comment rows belong to
// the ledger and comments packages; Delete is the one place this package
// touches them, because removing a poll removes everything under it.
type Store struct {
	db  *sql.DB
	bus *events.Bus
	now func() time.Time
}

func NewStore(db *sql.DB, bus *events.Bus) *Store {
	return &Store{db: db, bus: bus, now: time.Now}
}

// Create validates and persists a new poll, returning it with options and
// invites populated. Publishes poll-created.
func (s *Store) Create(ctx context.Context, in CreatePoll) (models.Poll, error) {
	in.Question = strings.TrimSpace(in.Question)
	if in.Question == "" {
		return models.Poll{}, fmt.Errorf("question is required: %w", ErrInvalid)
	}
	if in.CreatorID == "" {
		return models.Poll{}, fmt.Errorf("creator is required: %w", ErrInvalid)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if in.Visibility != models.VisibilityPublic && in.Visibility != models.VisibilityPrivate {
		return models.Poll{}, fmt.Errorf("visibility must be PUBLIC or PRIVATE: %w", ErrInvalid)
	}
	if in.MaxVotesPerUser == 0 {
		in.MaxVotesPerUser = 1
	}
	if in.MaxVotesPerUser < 1 {
		return models.Poll{}, fmt.Errorf("maxVotesPerUser must be >= 1: %w", ErrInvalid)
	}
	if !in.ValidUntil.After(s.now()) {
		return models.Poll{}, fmt.Errorf("deadline must be in the future: %w", ErrInvalid)
	}
	if len(in.Options) == 0 {
		return models.Poll{}, fmt.Errorf("at least one option is required: %w", ErrInvalid)
	}
	seen := make(map[int]bool, len(in.Options))
	for _, opt := range in.Options {
		if strings.TrimSpace(opt.Caption) == "" {
			return models.Poll{}, fmt.Errorf("option caption is required: %w", ErrInvalid)
		}
		if seen[opt.PresentationOrder] {
			return models.Poll{}, fmt.Errorf("duplicate presentation order %d: %w", opt.PresentationOrder, ErrInvalid)
		}
		seen[opt.PresentationOrder] = true
	}

	pollID, err := auth.GenerateID(16)
	if err != nil {
		return models.Poll{}, err
	}
	createdAt := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, creator_id, visibility, max_votes_per_user, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pollID, in.Question, in.CreatorID, in.Visibility, in.MaxVotesPerUser, in.ValidUntil, createdAt)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, opt := range in.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote_option (poll_id, caption, presentation_order)
			VALUES ($1, $2, $3)
		`, pollID, opt.Caption, opt.PresentationOrder)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if in.Visibility == models.VisibilityPrivate {
		// The creator is always part of their own invite set
		invites := append([]string{in.CreatorID}, in.InvitedUsers...)
		for _, userID := range invites {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO poll_invite (poll_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, pollID, userID)
			if err != nil {
				return models.Poll{}, fmt.Errorf("failed to insert invite: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit poll: %w", err)
	}

	slog.Info("poll created", "poll_id", pollID, "creator", in.CreatorID, "visibility", in.Visibility)

	s.bus.Publish(models.WsEvent{
		Type:   models.EventPollCreated,
		PollID: pollID,
		TS:     s.now().UnixMilli(),
	})

	return s.load(ctx, pollID)
}

// Get returns a poll visible to userID. PRIVATE polls require membership in
// the invite set.
func (s *Store) Get(ctx context.Context, pollID, userID string) (models.Poll, error) {
	poll, err := s.load(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	if poll.Visibility == models.VisibilityPrivate && !contains(poll.InvitedUsers, userID) {
		return models.Poll{}, ErrNotInvited
	}
	return poll, nil
}

// List returns every poll visible to userID: all PUBLIC polls plus PRIVATE
// polls the user is invited to.
func (s *Store) List(ctx context.Context, userID string) ([]models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM poll
		WHERE visibility = 'PUBLIC'
		   OR id IN (SELECT poll_id FROM poll_invite WHERE user_id = $1)
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	polls := make([]models.Poll, 0, len(ids))
	for _, id := range ids {
		poll, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

// Extend pushes a poll's deadline out and/or appends to its invite set.
// Creator only. Publishes poll-updated.
func (s *Store) Extend(ctx context.Context, pollID, userID string, extendBy time.Duration, invites []string) (models.Poll, error) {
	poll, err := s.load(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	if poll.CreatorID != userID {
		return models.Poll{}, ErrNotOwner
	}

	if extendBy > 0 {
		_, err = s.db.ExecContext(ctx, `
			UPDATE poll SET valid_until = $1 WHERE id = $2
		`, poll.ValidUntil.Add(extendBy), pollID)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to extend deadline: %w", err)
		}
	}

	for _, invitee := range invites {
		if invitee == "" {
			continue
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO poll_invite (poll_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, pollID, invitee)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert invite: %w", err)
		}
	}

	slog.Info("poll updated", "poll_id", pollID, "extend_by", extendBy, "new_invites", len(invites))

	s.bus.Publish(models.WsEvent{
		Type:   models.EventPollUpdated,
		PollID: pollID,
		TS:     s.now().UnixMilli(),
	})

	return s.load(ctx, pollID)
}

// AddOptions appends options to an existing poll. Creator only. Blank
// captions are skipped; options without a positive presentation order get
// the next free one. Publishes poll-updated.
func (s *Store) AddOptions(ctx context.Context, pollID, userID string, opts []models.VoteOption) (models.Poll, error) {
	poll, err := s.load(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	if poll.CreatorID != userID {
		return models.Poll{}, ErrNotOwner
	}

	maxOrder := 0
	for _, opt := range poll.PollOptions {
		if opt.PresentationOrder > maxOrder {
			maxOrder = opt.PresentationOrder
		}
	}

	added := 0
	for _, opt := range opts {
		if strings.TrimSpace(opt.Caption) == "" {
			continue
		}
		if opt.PresentationOrder <= 0 {
			maxOrder++
			opt.PresentationOrder = maxOrder
		} else if opt.PresentationOrder > maxOrder {
			maxOrder = opt.PresentationOrder
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO vote_option (poll_id, caption, presentation_order)
			VALUES ($1, $2, $3)
		`, pollID, opt.Caption, opt.PresentationOrder)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert option: %w", err)
		}
		added++
	}

	if added > 0 {
		slog.Info("options added", "poll_id", pollID, "count", added)
		s.bus.Publish(models.WsEvent{
			Type:   models.EventPollUpdated,
			PollID: pollID,
			TS:     s.now().UnixMilli(),
		})
	}

	return s.load(ctx, pollID)
}

// Delete removes a poll and everything under it: votes, comments, invites,
// options. Creator only. Publishes poll-deleted.
func (s *Store) Delete(ctx context.Context, pollID, userID string) error {
	var creatorID string
	err := s.db.QueryRowContext(ctx, `SELECT creator_id FROM poll WHERE id = $1`, pollID).Scan(&creatorID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if creatorID != userID {
		return ErrNotOwner
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit deletes instead of FK cascade, deterministic on both drivers
	for _, stmt := range []string{
		`DELETE FROM vote WHERE poll_id = $1`,
		`DELETE FROM comment WHERE poll_id = $1`,
		`DELETE FROM poll_invite WHERE poll_id = $1`,
		`DELETE FROM vote_option WHERE poll_id = $1`,
		`DELETE FROM poll WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, pollID); err != nil {
			return fmt.Errorf("failed to delete poll data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	slog.Info("poll deleted", "poll_id", pollID)

	s.bus.Publish(models.WsEvent{
		Type:   models.EventPollDeleted,
		PollID: pollID,
		TS:     s.now().UnixMilli(),
	})

	return nil
}

// CreatorOf returns the creator of a poll, for ownership checks by other
// packages.
func (s *Store) CreatorOf(ctx context.Context, pollID string) (string, error) {
	var creatorID string
	err := s.db.QueryRowContext(ctx, `SELECT creator_id FROM poll WHERE id = $1`, pollID).Scan(&creatorID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query poll: %w", err)
	}
	return creatorID, nil
}

func (s *Store) load(ctx context.Context, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, creator_id, visibility, max_votes_per_user, valid_until, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.PollID, &poll.Question, &poll.CreatorID, &poll.Visibility,
		&poll.MaxVotesPerUser, &poll.ValidUntil, &poll.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT caption, presentation_order
		FROM vote_option
		WHERE poll_id = $1
		ORDER BY presentation_order
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.PollOptions = []models.VoteOption{}
	for rows.Next() {
		var opt models.VoteOption
		if err := rows.Scan(&opt.Caption, &opt.PresentationOrder); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.PollOptions = append(poll.PollOptions, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, err
	}

	if poll.Visibility == models.VisibilityPrivate {
		inviteRows, err := s.db.QueryContext(ctx, `
			SELECT user_id FROM poll_invite WHERE poll_id = $1 ORDER BY user_id
		`, pollID)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to query invites: %w", err)
		}
		defer inviteRows.Close()

		for inviteRows.Next() {
			var userID string
			if err := inviteRows.Scan(&userID); err != nil {
				return models.Poll{}, fmt.Errorf("failed to scan invite: %w", err)
			}
			poll.InvitedUsers = append(poll.InvitedUsers, userID)
		}
		if err := inviteRows.Err(); err != nil {
			return models.Poll{}, err
		}
	}

	return poll, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
