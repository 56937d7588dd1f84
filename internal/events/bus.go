/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import (
	"sync"
	"time"
)

// EventType enumerates event categories.
type EventType string

const (
	EventTrackerTick    EventType = "tracker.tick"
	EventBossStatus     EventType = "boss.status"
	EventHelltideStatus EventType = "helltide.status"
	EventPreviewReload  EventType = "preview.reload"
)

// Event is a published message.
type Event struct {
	Type EventType
	At   time.Time
	Data any
}

// Subscriber receives events.
type Subscriber chan Event

// Bus implements a simple in-process pubsub. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[EventType][]Subscriber
	dropped func(EventType)
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// OnDrop registers a callback invoked when a subscriber misses an event.
func (b *Bus) OnDrop(fn func(EventType)) {
	b.mu.Lock()
	b.dropped = fn
	b.mu.Unlock()
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends the event to subscribers.
func (b *Bus) Publish(eventType EventType, at time.Time, data any) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	dropped := b.dropped
	b.mu.RUnlock()

	evt := Event{Type: eventType, At: at, Data: data}
	for _, sub := range subs {
		select {
		case sub <- evt:
		default:
			if dropped != nil {
				dropped(eventType)
			}
		}
	}
}

// Unsubscribe removes the subscriber and closes it.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	b.subs[eventType] = subs
}
