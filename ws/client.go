// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/livepoll/server/models"
)

// State is the client transport state:
// Disconnected -> Connecting -> Open -> (Disconnected on close/error).
type State int

const (
	Disconnected State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "disconnected"
	}
}

// Client maintains one logical event-stream connection. On involuntary close
// it reconnects with exponential backoff (ReconnectMin doubling up to
// ReconnectMax). There is no replay of missed events: OnReconnect is the
// caller's cue to perform a one-time authoritative refresh.
type Client struct {
	URL   string
	Hello string // optional text frame sent on every open

	// OnEvent receives decoded tagged events. OnText receives untagged or
	// non-JSON frames, a legacy fallback treated as opaque log lines.
	OnEvent     func(models.WsEvent)
	OnText      func(string)
	OnReconnect func()

	ReconnectMin time.Duration // default 1s
	ReconnectMax time.Duration // default 10s
	Dialer       *websocket.Dialer

	mu    sync.Mutex
	state State
}

// State reports the current transport state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run connects and keeps the connection alive until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.ReconnectMin
	if bo.InitialInterval <= 0 {
		bo.InitialInterval = 1 * time.Second
	}
	bo.MaxInterval = c.ReconnectMax
	if bo.MaxInterval <= 0 {
		bo.MaxInterval = 10 * time.Second
	}
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // retry forever

	hadSession := false
	for {
		c.setState(Connecting)
		conn, _, err := dialer.DialContext(ctx, c.URL, nil)
		if err != nil {
			c.setState(Disconnected)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := bo.NextBackOff()
			slog.Info("websocket dial failed, backing off", "error", err, "wait", wait)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		bo.Reset()
		c.setState(Open)

		if c.Hello != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(c.Hello)); err != nil {
				slog.Info("hello frame failed", "error", err)
			}
		}
		if hadSession && c.OnReconnect != nil {
			c.OnReconnect()
		}
		hadSession = true

		c.readLoop(ctx, conn)
		c.setState(Disconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := bo.NextBackOff()
		slog.Info("websocket closed, reconnecting", "wait", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev models.WsEvent
		if json.Unmarshal(msg, &ev) == nil && ev.Type != "" {
			if c.OnEvent != nil {
				c.OnEvent(ev)
			}
			continue
		}
		if c.OnText != nil {
			c.OnText(string(msg))
		}
	}
}
