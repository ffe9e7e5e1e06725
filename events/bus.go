// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"log/slog"
	"sync"

	"github.com/livepoll/server/models"
)

// DefaultBuffer is the per-subscriber event queue length. A subscriber that
// falls this far behind is dropped rather than allowed to backpressure writers.
const DefaultBuffer = 64

// Bus is a single-process publish/subscribe hub. It owns no durable state,
// only the transient subscriber set.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// Subscription is the deregistration handle returned by Subscribe. Events
// arrive on the channel returned by Events; the channel is closed when the
// subscription ends, whether by Close or by being dropped as too slow.
type Subscription struct {
	bus  *Bus
	ch   chan models.WsEvent
	once sync.Once
}

func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		bus: b,
		ch:  make(chan models.WsEvent, b.buffer),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish hands the event to every current subscriber without blocking.
// Callers serialize mutations per poll, so events for one poll reach each
// subscriber's queue in publish order. A subscriber whose queue is full is
// dropped; it is expected to reconnect and refresh.
func (b *Bus) Publish(ev models.WsEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			slog.Warn("dropping slow event subscriber", "type", ev.Type, "poll_id", ev.PollID)
			b.dropLocked(s)
		}
	}
}

// SubscriberCount reports the current number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) dropLocked(s *Subscription) {
	delete(b.subs, s)
	s.once.Do(func() { close(s.ch) })
}

// Events returns the subscriber's receive channel.
func (s *Subscription) Events() <-chan models.WsEvent {
	return s.ch
}

// Close deregisters the subscription. Safe to call more than once, and safe
// to race with the bus dropping the subscriber.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	s.bus.dropLocked(s)
	s.bus.mu.Unlock()
}
