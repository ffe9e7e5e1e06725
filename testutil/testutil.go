// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/livepoll/server/auth"
	"github.com/livepoll/server/cliparse"
	"github.com/livepoll/server/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Each call gets its own database, so tests are fully isolated and hermetic.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name, _ := auth.GenerateID(8)
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Single connection: SQLite allows one writer, and the shared-cache
	// in-memory DB vanishes when its last connection closes
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           8080,
		DatabaseURL:    "file:test?mode=memory",
		DatabaseType:   "sqlite",
		TopPageLimit:   cliparse.DefaultTopPageLimit,
		ReplyPageLimit: cliparse.DefaultReplyPageLimit,
		ReconnectMin:   cliparse.DefaultReconnectMin,
		ReconnectMax:   cliparse.DefaultReconnectMax,
	}
}

// CreateTestPoll inserts a PUBLIC poll with the given option captions
// (presentation orders 1..n) and a deadline a day out, returning its ID.
func CreateTestPoll(t *testing.T, conn *sql.DB, creatorID string, maxVotes int, captions ...string) string {
	t.Helper()

	pollID, _ := auth.GenerateID(16)
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, creator_id, visibility, max_votes_per_user, valid_until, created_at)
		VALUES ($1, 'Test Poll?', $2, 'PUBLIC', $3, $4, $5)
	`, pollID, creatorID, maxVotes, now.Add(24*time.Hour), now)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, caption := range captions {
		_, err := conn.Exec(`
			INSERT INTO vote_option (poll_id, caption, presentation_order)
			VALUES ($1, $2, $3)
		`, pollID, caption, i+1)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return pollID
}

// SetPollDeadline rewrites a poll's deadline, for closed-poll tests.
func SetPollDeadline(t *testing.T, conn *sql.DB, pollID string, deadline time.Time) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE poll SET valid_until = $1 WHERE id = $2`, deadline, pollID); err != nil {
		t.Fatalf("Failed to set poll deadline: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
