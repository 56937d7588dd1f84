/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventTrackerTick)
	other := bus.Subscribe(EventBossStatus)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bus.Publish(EventTrackerTick, at, "payload")

	select {
	case evt := <-sub:
		if evt.Type != EventTrackerTick || !evt.At.Equal(at) || evt.Data != "payload" {
			t.Fatalf("unexpected event %+v", evt)
		}
	default:
		t.Fatal("expected an event")
	}

	select {
	case evt := <-other:
		t.Fatalf("subscriber of another type received %+v", evt)
	default:
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventTrackerTick)

	var dropped int
	bus.OnDrop(func(EventType) { dropped++ })

	for i := 0; i < cap(sub)+3; i++ {
		bus.Publish(EventTrackerTick, time.Now(), i)
	}
	if len(sub) != cap(sub) {
		t.Fatalf("buffered %d events, want %d", len(sub), cap(sub))
	}
	if dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventHelltideStatus)
	bus.Unsubscribe(EventHelltideStatus, sub)

	if _, ok := <-sub; ok {
		t.Fatal("expected closed subscriber")
	}
	// Publishing after unsubscribe must not panic on the closed channel.
	bus.Publish(EventHelltideStatus, time.Now(), nil)
}
