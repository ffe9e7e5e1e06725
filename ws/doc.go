// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ws provides both ends of the event stream.

# Server

Hub is the connection registry mounted at GET /rawws. Each connection gets a
bus subscription; events are written as JSON tagged unions. A connection
whose transport is no longer writable, or that falls too far behind, is
dropped silently — a failed push never reaches the writer that triggered it.

# Client

Client keeps one logical connection alive:

	c := &ws.Client{
		URL:         "ws://localhost:8080/rawws",
		OnEvent:     func(ev models.WsEvent) { ... },
		OnReconnect: func() {}, // re-fetch polls and tallies
	}
	err := c.Run(ctx)

Reconnects use exponential backoff, 1s doubling to a 10s cap. Delivery is
at-most-once and best-effort while connected; there is no replay, so
OnReconnect performs the authoritative refresh that heals any gap. Untagged
or plain-text frames are passed to OnText as opaque lines.
*/
package ws
