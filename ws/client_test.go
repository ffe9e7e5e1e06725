// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livepoll/server/models"
)

func TestClientReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(models.WsEvent{Type: models.EventVoteDelta, PollID: "p1", OptionOrder: 3, TS: 9})
		// Hold the connection open until the test ends
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	got := make(chan models.WsEvent, 1)
	c := &Client{
		URL:     wsURL(srv),
		OnEvent: func(ev models.WsEvent) { got <- ev },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case ev := <-got:
		if ev.Type != models.EventVoteDelta || ev.PollID != "p1" || ev.OptionOrder != 3 {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
	}

	if c.State() != Open {
		t.Errorf("Expected state open, got %s", c.State())
	}
}

func TestClientTextFallback(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Untagged frames fall through to OnText
		conn.WriteMessage(websocket.TextMessage, []byte("plain broadcast"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	got := make(chan string, 1)
	c := &Client{
		URL:    wsURL(srv),
		OnText: func(s string) { got <- s },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case s := <-got:
		if s != "plain broadcast" {
			t.Errorf("Expected 'plain broadcast', got %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for text frame")
	}
}

func TestClientSendsHelloOnOpen(t *testing.T) {
	upgrader := websocket.Upgrader{}
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		got <- string(msg)
	}))
	defer srv.Close()

	c := &Client{URL: wsURL(srv), Hello: "hi server"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case s := <-got:
		if s != "hi server" {
			t.Errorf("Expected hello frame 'hi server', got %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for hello frame")
	}
}

func TestClientReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var sessions atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := sessions.Add(1)
		if n == 1 {
			// Kill the first session to force a reconnect
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteJSON(models.WsEvent{Type: models.EventPollUpdated, PollID: "p1", TS: 1})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	reconnected := make(chan struct{}, 1)
	got := make(chan models.WsEvent, 1)
	c := &Client{
		URL:          wsURL(srv),
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 50 * time.Millisecond,
		OnEvent:      func(ev models.WsEvent) { got <- ev },
		OnReconnect:  func() { reconnected <- struct{}{} },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case <-reconnected:
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for reconnect")
	}

	select {
	case ev := <-got:
		if ev.Type != models.EventPollUpdated {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for post-reconnect event")
	}

	if sessions.Load() < 2 {
		t.Errorf("Expected at least 2 sessions, got %d", sessions.Load())
	}
}

func TestClientRunStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := &Client{URL: wsURL(srv)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Let it connect, then cancel
	deadline := time.Now().Add(2 * time.Second)
	for c.State() != Open {
		if time.Now().After(deadline) {
			t.Fatal("Client never connected")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if c.State() != Disconnected {
		t.Errorf("Expected disconnected state after cancel, got %s", c.State())
	}
}
