// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livepoll/server/events"
	"github.com/livepoll/server/models"
)

var (
	ErrEmptyContent   = errors.New("comment content is empty")
	ErrPollNotFound   = errors.New("poll not found")
	ErrParentNotFound = errors.New("parent comment not found in poll")
	ErrNotFound       = errors.New("comment not found")
	ErrNotOwner       = errors.New("user is not the comment author")
	ErrNotAuthorized  = errors.New("user may not delete this comment")
)

// Store owns comment rows, a forest per poll. Each node keeps an optional
// parent-id back-reference; the tree is browsed lazily, one level per call,
// so no operation ever materializes a whole subtree.
type Store struct {
	db  *sql.DB
	bus *events.Bus
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(db *sql.DB, bus *events.Bus) *Store {
	return &Store{
		db:    db,
		bus:   bus,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) pollLock(pollID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[pollID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[pollID] = lock
	}
	return lock
}

// Add appends a comment to the poll's top-level set, or to parentID's reply
// set. The parent must exist in the same poll. Publishes comment-created.
func (s *Store) Add(ctx context.Context, pollID, authorID, content string, parentID *string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}

	lock := s.pollLock(pollID)
	lock.Lock()
	defer lock.Unlock()

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to check poll: %w", err)
	}
	if !exists {
		return models.Comment{}, ErrPollNotFound
	}

	if parentID != nil {
		var parentExists bool
		err = s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM comment WHERE id = $1 AND poll_id = $2)
		`, *parentID, pollID).Scan(&parentExists)
		if err != nil {
			return models.Comment{}, fmt.Errorf("failed to check parent: %w", err)
		}
		if !parentExists {
			return models.Comment{}, ErrParentNotFound
		}
	}

	// Insertion sequence per poll, assigned under the poll lock so the
	// pagination order is deterministic
	var seq int
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM comment WHERE poll_id = $1
	`, pollID).Scan(&seq)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to compute sequence: %w", err)
	}

	now := s.now()
	c := models.Comment{
		CommentID: uuid.NewString(),
		PollID:    pollID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comment (id, poll_id, author_id, parent_id, content, seq, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.CommentID, c.PollID, c.AuthorID, c.ParentID, c.Content, seq, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}

	slog.Info("comment added", "poll_id", pollID, "comment_id", c.CommentID)

	s.bus.Publish(models.WsEvent{
		Type:     models.EventCommentCreated,
		PollID:   pollID,
		Comment:  &c,
		ParentID: parentID,
		TS:       now.UnixMilli(),
	})

	return c, nil
}

// ListTopLevel pages through a poll's top-level comments, newest first.
func (s *Store) ListTopLevel(ctx context.Context, pollID string, offset, limit int) (models.CommentPage, error) {
	return s.page(ctx, pollID, nil, offset, limit)
}

// ListReplies pages through the direct children of parentID, oldest first.
// Nested replies are reached by calling ListReplies on each child id, one
// level of depth per call. The parent need not still exist: replies to a
// deleted comment stay paginable.
func (s *Store) ListReplies(ctx context.Context, pollID, parentID string, offset, limit int) (models.CommentPage, error) {
	return s.page(ctx, pollID, &parentID, offset, limit)
}

func (s *Store) page(ctx context.Context, pollID string, parentID *string, offset, limit int) (models.CommentPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 1
	}

	var total int
	var rows *sql.Rows
	var err error
	if parentID == nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM comment WHERE poll_id = $1 AND parent_id IS NULL
		`, pollID).Scan(&total)
		if err != nil {
			return models.CommentPage{}, fmt.Errorf("failed to count comments: %w", err)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, poll_id, author_id, parent_id, content, created_at, updated_at
			FROM comment
			WHERE poll_id = $1 AND parent_id IS NULL
			ORDER BY seq DESC
			LIMIT $2 OFFSET $3
		`, pollID, limit, offset)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM comment WHERE poll_id = $1 AND parent_id = $2
		`, pollID, *parentID).Scan(&total)
		if err != nil {
			return models.CommentPage{}, fmt.Errorf("failed to count replies: %w", err)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, poll_id, author_id, parent_id, content, created_at, updated_at
			FROM comment
			WHERE poll_id = $1 AND parent_id = $2
			ORDER BY seq ASC
			LIMIT $3 OFFSET $4
		`, pollID, *parentID, limit, offset)
	}
	if err != nil {
		return models.CommentPage{}, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.CommentID, &c.PollID, &c.AuthorID, &c.ParentID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return models.CommentPage{}, fmt.Errorf("failed to scan comment: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return models.CommentPage{}, err
	}

	nextOffset := offset + len(items)
	return models.CommentPage{
		Items:      items,
		Total:      total,
		HasMore:    nextOffset < total,
		NextOffset: nextOffset,
	}, nil
}

// Edit replaces a comment's content. Author only. Publishes comment-updated.
func (s *Store) Edit(ctx context.Context, pollID, commentID, editorID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}

	c, err := s.get(ctx, pollID, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if c.AuthorID != editorID {
		return models.Comment{}, ErrNotOwner
	}

	c.Content = content
	c.UpdatedAt = s.now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE comment SET content = $1, updated_at = $2 WHERE id = $3
	`, c.Content, c.UpdatedAt, commentID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to update comment: %w", err)
	}

	slog.Info("comment edited", "poll_id", pollID, "comment_id", commentID)

	s.bus.Publish(models.WsEvent{
		Type:      models.EventCommentUpdated,
		PollID:    pollID,
		CommentID: commentID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		TS:        c.UpdatedAt.UnixMilli(),
	})

	return c, nil
}

// Delete removes a single comment. Authorized for the comment's author and
// for the poll's owner. Replies are left in place as orphans, still
// retrievable by parentId. Publishes comment-deleted.
func (s *Store) Delete(ctx context.Context, pollID, commentID, requesterID string) error {
	c, err := s.get(ctx, pollID, commentID)
	if err != nil {
		return err
	}

	if c.AuthorID != requesterID {
		var creatorID string
		err = s.db.QueryRowContext(ctx, `SELECT creator_id FROM poll WHERE id = $1`, pollID).Scan(&creatorID)
		if err == sql.ErrNoRows {
			return ErrPollNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query poll owner: %w", err)
		}
		if creatorID != requesterID {
			return ErrNotAuthorized
		}
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM comment WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	slog.Info("comment deleted", "poll_id", pollID, "comment_id", commentID, "requester", requesterID)

	s.bus.Publish(models.WsEvent{
		Type:      models.EventCommentDeleted,
		PollID:    pollID,
		CommentID: commentID,
		ParentID:  c.ParentID,
		TS:        s.now().UnixMilli(),
	})

	return nil
}

func (s *Store) get(ctx context.Context, pollID, commentID string) (models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, author_id, parent_id, content, created_at, updated_at
		FROM comment
		WHERE id = $1 AND poll_id = $2
	`, commentID, pollID).Scan(
		&c.CommentID, &c.PollID, &c.AuthorID, &c.ParentID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to query comment: %w", err)
	}
	return c, nil
}
