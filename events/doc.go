// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events implements the in-process event bus between the write path and
the websocket connection registry.

# Usage

	bus := events.New(events.DefaultBuffer)

	sub := bus.Subscribe()
	defer sub.Close()
	for ev := range sub.Events() {
		// push ev to the client
	}

	bus.Publish(models.WsEvent{Type: models.EventVoteDelta, PollID: id})

# Delivery Semantics

Publish never blocks: each subscriber has a bounded queue, and a subscriber
whose queue overflows is dropped and its channel closed. Events concerning the
same poll are queued per subscriber in publish order; no ordering is promised
across polls. Delivery while connected is best-effort — clients heal gaps by
refreshing after reconnect.
*/
package events
