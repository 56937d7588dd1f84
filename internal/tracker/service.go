/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package tracker drives periodic re-evaluation of the event timers.
package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/telemetry"
	"github.com/friendsincode/d4events/internal/view"
)

// TickPeriod is the refresh interval of the tracker.
const TickPeriod = time.Second

// ErrAlreadyRunning is returned when Run is called on a service whose loop is active.
var ErrAlreadyRunning = errors.New("tracker loop already running")

// Card names used in transition events.
const (
	CardBoss     = "world_boss"
	CardHelltide = "helltide"
)

// Service owns the refresh ticker. Every tick re-derives the snapshot from the
// current clock reading, so a late or skipped tick never accumulates drift.
type Service struct {
	eval   *Evaluator
	bus    *events.Bus
	now    func() time.Time
	period time.Duration
	logger zerolog.Logger

	running atomic.Bool
	latest  atomic.Pointer[Snapshot]

	// Only touched from the loop goroutine.
	lastBoss     view.Status
	lastHelltide view.Status
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the tracker service. bus may be nil.
func New(eval *Evaluator, bus *events.Bus, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		eval:   eval,
		bus:    bus,
		now:    time.Now,
		period: TickPeriod,
		logger: logger.With().Str("component", "tracker").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Latest returns the most recent snapshot, or nil before the first tick.
func (s *Service) Latest() *Snapshot {
	return s.latest.Load()
}

// Run evaluates immediately, then once per tick until the context is cancelled.
// The ticker is created here and stopped on return.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.logger.Debug().Dur("period", s.period).Msg("tracker loop started")
	s.tick()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("tracker loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Service) tick() {
	started := time.Now()
	snap := s.eval.Evaluate(s.now())
	telemetry.TrackerEvaluationSeconds.Observe(time.Since(started).Seconds())
	telemetry.TrackerTicksTotal.Inc()

	s.latest.Store(&snap)

	s.observe(CardBoss, &s.lastBoss, snap.BossView.Status, snap.At, events.EventBossStatus)
	s.observe(CardHelltide, &s.lastHelltide, snap.HelltideView.Status, snap.At, events.EventHelltideStatus)

	if s.bus != nil {
		s.bus.Publish(events.EventTrackerTick, snap.At, snap)
	}
}

func (s *Service) observe(card string, last *view.Status, current view.Status, at time.Time, eventType events.EventType) {
	previous := *last
	*last = current
	if previous == "" || previous == current {
		return
	}

	telemetry.TrackerTransitionsTotal.WithLabelValues(card, string(current)).Inc()
	s.logger.Info().
		Str("card", card).
		Str("from", string(previous)).
		Str("to", string(current)).
		Msg("status changed")

	if s.bus != nil {
		s.bus.Publish(eventType, at, Transition{Card: card, From: previous, To: current, At: at})
	}
}
