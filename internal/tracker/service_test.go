/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/rotation"
	"github.com/friendsincode/d4events/internal/view"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// steppedClock returns a fixed instant that tests move explicitly.
type steppedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestEvaluateMatchesResolvers(t *testing.T) {
	eval := DefaultEvaluator()
	now := rotation.WorldBossAnchor.Add(-time.Second)

	snap := eval.Evaluate(now)
	if snap.Boss.Index != 0 || snap.Boss.Remaining != time.Second {
		t.Fatalf("boss = %+v, want index 0 with 1s remaining", snap.Boss)
	}
	if snap.BossView.Status != view.StatusSoon {
		t.Fatalf("boss status = %s, want SOON", snap.BossView.Status)
	}
	if snap.BossView.Name != "Avarice" {
		t.Fatalf("boss name = %q, want Avarice", snap.BossView.Name)
	}
	// 08:29:59 UTC is 29m59s into the hour: helltide active.
	if !snap.Helltide.Active || snap.HelltideView.Status != view.StatusActive {
		t.Fatalf("helltide = %+v, want active", snap.Helltide)
	}
	if snap.Season.Current != nil {
		t.Fatalf("season current = %+v, want nil before season 11", snap.Season.Current)
	}
	if again := eval.Evaluate(now); again.BossView != snap.BossView || again.HelltideView != snap.HelltideView {
		t.Fatal("repeated evaluation differs")
	}
}

func TestRunPublishesTicksAndStops(t *testing.T) {
	clock := &steppedClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	bus := events.NewBus()
	ticks := bus.Subscribe(events.EventTrackerTick)

	svc := New(DefaultEvaluator(), bus, zerolog.Nop(), WithClock(clock.Now))
	svc.period = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// The first evaluation happens before the first tick.
	select {
	case evt := <-ticks:
		snap, ok := evt.Data.(Snapshot)
		if !ok {
			t.Fatalf("tick payload %T, want Snapshot", evt.Data)
		}
		if !snap.At.Equal(clock.Now()) {
			t.Fatalf("snapshot at %v, want %v", snap.At, clock.Now())
		}
	case <-time.After(time.Second):
		t.Fatal("no tick published")
	}

	if err := svc.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Run error = %v, want ErrAlreadyRunning", err)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if svc.Latest() == nil {
		t.Fatal("Latest() = nil after ticks")
	}
}

func TestTickPublishesTransitions(t *testing.T) {
	// 16 minutes before a spawn the card is APPROACHING; two minutes later it is SOON.
	spawn := rotation.WorldBossAnchor.Add(10 * rotation.WorldBossInterval)
	clock := &steppedClock{now: spawn.Add(-16 * time.Minute)}

	bus := events.NewBus()
	transitions := bus.Subscribe(events.EventBossStatus)
	svc := New(DefaultEvaluator(), bus, zerolog.Nop(), WithClock(clock.Now))

	svc.tick()
	select {
	case evt := <-transitions:
		t.Fatalf("first tick published transition %+v", evt)
	default:
	}

	clock.Set(spawn.Add(-14 * time.Minute))
	svc.tick()

	select {
	case evt := <-transitions:
		tr, ok := evt.Data.(Transition)
		if !ok {
			t.Fatalf("transition payload %T", evt.Data)
		}
		if tr.Card != CardBoss || tr.From != view.StatusApproaching || tr.To != view.StatusSoon {
			t.Fatalf("transition = %+v, want APPROACHING -> SOON", tr)
		}
	default:
		t.Fatal("expected a boss transition")
	}

	svc.tick()
	select {
	case evt := <-transitions:
		t.Fatalf("unchanged status published %+v", evt)
	default:
	}
}

func TestTickSelfCorrectsAfterGap(t *testing.T) {
	start := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	clock := &steppedClock{now: start}
	svc := New(DefaultEvaluator(), nil, zerolog.Nop(), WithClock(clock.Now))

	svc.tick()
	clock.Set(start.Add(3*time.Hour + 17*time.Second))
	svc.tick()

	want := DefaultEvaluator().Evaluate(clock.Now())
	got := svc.Latest()
	if got.BossView != want.BossView || got.HelltideView != want.HelltideView {
		t.Fatalf("after a gap the snapshot differs from a fresh evaluation")
	}
}
