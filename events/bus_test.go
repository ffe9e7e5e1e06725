// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"testing"

	"github.com/livepoll/server/models"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New(8)
	s1 := bus.Subscribe()
	s2 := bus.Subscribe()
	defer s1.Close()
	defer s2.Close()

	bus.Publish(models.WsEvent{Type: models.EventVoteDelta, PollID: "p1", OptionOrder: 1})

	for _, s := range []*Subscription{s1, s2} {
		ev := <-s.Events()
		if ev.Type != models.EventVoteDelta || ev.PollID != "p1" {
			t.Errorf("unexpected event: %+v", ev)
		}
	}
}

func TestPerPollOrderPreserved(t *testing.T) {
	bus := New(16)
	sub := bus.Subscribe()
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		bus.Publish(models.WsEvent{Type: models.EventVoteDelta, PollID: "p1", OptionOrder: i})
	}

	for i := 1; i <= 5; i++ {
		ev := <-sub.Events()
		if ev.OptionOrder != i {
			t.Fatalf("event %d arrived out of order: got %d", i, ev.OptionOrder)
		}
	}
}

func TestSlowSubscriberDroppedWithoutBlocking(t *testing.T) {
	bus := New(2)
	slow := bus.Subscribe()
	fast := bus.Subscribe()
	defer fast.Close()

	// Fill the slow subscriber's queue, then overflow it. Publish must not
	// block and must not disturb the healthy subscriber.
	for i := 0; i < 4; i++ {
		bus.Publish(models.WsEvent{Type: models.EventVoteDelta, PollID: "p1", OptionOrder: i})
		ev := <-fast.Events()
		if ev.OptionOrder != i {
			t.Fatalf("fast subscriber missed event %d", i)
		}
	}

	if bus.SubscriberCount() != 1 {
		t.Errorf("expected slow subscriber to be dropped, have %d subscribers", bus.SubscriberCount())
	}

	// The dropped subscriber's channel drains its backlog and then closes.
	n := 0
	for range slow.Events() {
		n++
	}
	if n != 2 {
		t.Errorf("expected 2 buffered events before close, got %d", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := New(2)
	sub := bus.Subscribe()
	sub.Close()
	sub.Close()

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}

	// Publishing after all subscribers are gone is a no-op.
	bus.Publish(models.WsEvent{Type: models.EventPollCreated, PollID: "p1"})
}
