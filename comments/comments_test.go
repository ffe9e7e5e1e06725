// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/livepoll/server/events"
	"github.com/livepoll/server/models"
	"github.com/livepoll/server/testutil"
)

func newTestStore(t *testing.T) (*Store, *events.Bus, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	bus := events.New(events.DefaultBuffer)
	pollID := testutil.CreateTestPoll(t, db, "poll-owner", 1, "Yes", "No")
	return NewStore(db, bus), bus, pollID
}

func TestAddComment(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	c, err := s.Add(ctx, pollID, "alice", "first!", nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if c.CommentID == "" {
		t.Error("Expected non-empty comment ID")
	}
	if c.ParentID != nil {
		t.Errorf("Expected nil parent for top-level comment, got %v", *c.ParentID)
	}
	if c.Content != "first!" {
		t.Errorf("Expected content 'first!', got %q", c.Content)
	}
}

func TestAddCommentValidation(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, pollID, "alice", "   ", nil); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent for whitespace content, got %v", err)
	}
	if _, err := s.Add(ctx, "missing-poll", "alice", "hi", nil); !errors.Is(err, ErrPollNotFound) {
		t.Errorf("Expected ErrPollNotFound, got %v", err)
	}

	bogus := "no-such-comment"
	if _, err := s.Add(ctx, pollID, "alice", "hi", &bogus); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("Expected ErrParentNotFound, got %v", err)
	}
}

func TestReplyParentMustBeInSamePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	bus := events.New(events.DefaultBuffer)
	s := NewStore(db, bus)
	ctx := context.Background()

	pollA := testutil.CreateTestPoll(t, db, "owner", 1, "Yes")
	pollB := testutil.CreateTestPoll(t, db, "owner", 1, "Yes")

	parent, err := s.Add(ctx, pollA, "alice", "in poll A", nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := s.Add(ctx, pollB, "bob", "cross-poll reply", &parent.CommentID); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("Expected ErrParentNotFound for cross-poll parent, got %v", err)
	}
}

func TestTopLevelPagination(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	// Insert 7 top-level comments; newest first means c7 leads page one
	for i := 1; i <= 7; i++ {
		if _, err := s.Add(ctx, pollID, "alice", "comment "+string(rune('0'+i)), nil); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	page1, err := s.ListTopLevel(ctx, pollID, 0, 5)
	if err != nil {
		t.Fatalf("ListTopLevel failed: %v", err)
	}
	if len(page1.Items) != 5 {
		t.Fatalf("Expected 5 items on page 1, got %d", len(page1.Items))
	}
	if page1.Total != 7 {
		t.Errorf("Expected total 7, got %d", page1.Total)
	}
	if !page1.HasMore {
		t.Error("Expected hasMore on page 1")
	}
	if page1.NextOffset != 5 {
		t.Errorf("Expected nextOffset 5, got %d", page1.NextOffset)
	}
	if page1.Items[0].Content != "comment 7" {
		t.Errorf("Expected newest comment first, got %q", page1.Items[0].Content)
	}

	page2, err := s.ListTopLevel(ctx, pollID, page1.NextOffset, 5)
	if err != nil {
		t.Fatalf("ListTopLevel failed: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("Expected 2 items on page 2, got %d", len(page2.Items))
	}
	if page2.HasMore {
		t.Error("Expected no more pages after page 2")
	}
	if page2.NextOffset != 7 {
		t.Errorf("Expected nextOffset 7, got %d", page2.NextOffset)
	}

	// Pages are disjoint
	seen := make(map[string]bool)
	for _, c := range append(page1.Items, page2.Items...) {
		if seen[c.CommentID] {
			t.Errorf("Comment %s appeared on two pages", c.CommentID)
		}
		seen[c.CommentID] = true
	}
}

func TestRepliesPagedOldestFirst(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	parent, err := s.Add(ctx, pollID, "alice", "parent", nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	for i := 1; i <= 4; i++ {
		if _, err := s.Add(ctx, pollID, "bob", "reply "+string(rune('0'+i)), &parent.CommentID); err != nil {
			t.Fatalf("Add reply failed: %v", err)
		}
	}

	page, err := s.ListReplies(ctx, pollID, parent.CommentID, 0, 3)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("Expected 3 replies, got %d", len(page.Items))
	}
	if page.Items[0].Content != "reply 1" {
		t.Errorf("Expected oldest reply first, got %q", page.Items[0].Content)
	}
	if !page.HasMore || page.NextOffset != 3 || page.Total != 4 {
		t.Errorf("Unexpected page shape: hasMore=%v nextOffset=%d total=%d", page.HasMore, page.NextOffset, page.Total)
	}

	// Replies don't leak into the top-level listing
	top, err := s.ListTopLevel(ctx, pollID, 0, 10)
	if err != nil {
		t.Fatalf("ListTopLevel failed: %v", err)
	}
	if top.Total != 1 {
		t.Errorf("Expected 1 top-level comment, got %d", top.Total)
	}
}

func TestEditComment(t *testing.T) {
	s, bus, pollID := newTestStore(t)
	ctx := context.Background()

	c, err := s.Add(ctx, pollID, "alice", "original", nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	sub := bus.Subscribe()
	defer sub.Close()

	edited, err := s.Edit(ctx, pollID, c.CommentID, "alice", "revised")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if edited.Content != "revised" {
		t.Errorf("Expected revised content, got %q", edited.Content)
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != models.EventCommentUpdated || ev.CommentID != c.CommentID {
			t.Errorf("Unexpected event %+v", ev)
		}
		if ev.Content != "revised" {
			t.Errorf("Expected event content 'revised', got %q", ev.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for comment-updated event")
	}

	// Only the author may edit
	if _, err := s.Edit(ctx, pollID, c.CommentID, "poll-owner", "hijacked"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner for non-author edit, got %v", err)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	c1, _ := s.Add(ctx, pollID, "alice", "by alice", nil)
	c2, _ := s.Add(ctx, pollID, "alice", "also by alice", nil)

	// A third party may not delete
	if err := s.Delete(ctx, pollID, c1.CommentID, "mallory"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized, got %v", err)
	}

	// The author may
	if err := s.Delete(ctx, pollID, c1.CommentID, "alice"); err != nil {
		t.Errorf("Author delete failed: %v", err)
	}

	// The poll owner may, even for others' comments
	if err := s.Delete(ctx, pollID, c2.CommentID, "poll-owner"); err != nil {
		t.Errorf("Poll owner delete failed: %v", err)
	}

	if err := s.Delete(ctx, pollID, c1.CommentID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for already-deleted comment, got %v", err)
	}
}

func TestDeleteLeavesRepliesPaginable(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	parent, _ := s.Add(ctx, pollID, "alice", "parent", nil)
	r1, err := s.Add(ctx, pollID, "bob", "orphan-to-be", &parent.CommentID)
	if err != nil {
		t.Fatalf("Add reply failed: %v", err)
	}

	if err := s.Delete(ctx, pollID, parent.CommentID, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The reply survives its parent and is still reachable by parentId
	page, err := s.ListReplies(ctx, pollID, parent.CommentID, 0, 10)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].CommentID != r1.CommentID {
		t.Errorf("Expected orphaned reply to remain paginable, got %d items", len(page.Items))
	}
}

func TestPageClamping(t *testing.T) {
	s, _, pollID := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, pollID, "alice", "only one", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	page, err := s.ListTopLevel(ctx, pollID, -5, 0)
	if err != nil {
		t.Fatalf("ListTopLevel failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("Expected clamped page to return the comment, got %d items", len(page.Items))
	}

	// Past-the-end offset returns an empty page, not an error
	empty, err := s.ListTopLevel(ctx, pollID, 50, 5)
	if err != nil {
		t.Fatalf("ListTopLevel failed: %v", err)
	}
	if len(empty.Items) != 0 || empty.HasMore {
		t.Errorf("Expected empty terminal page, got %d items hasMore=%v", len(empty.Items), empty.HasMore)
	}
}
