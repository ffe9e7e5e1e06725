// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http/httptest"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(id))
	}

	other, _ := GenerateID(16)
	if id == other {
		t.Error("two generated IDs should not collide")
	}
}

func TestUserID(t *testing.T) {
	r := httptest.NewRequest("GET", "/polls", nil)
	if _, err := UserID(r); err != ErrMissingUser {
		t.Errorf("expected ErrMissingUser, got %v", err)
	}

	r.Header.Set("X-User-ID", "  user-7  ")
	id, err := UserID(r)
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if id != "user-7" {
		t.Errorf("expected trimmed user id, got %q", id)
	}
}
