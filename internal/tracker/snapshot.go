/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package tracker

import (
	"time"

	"github.com/friendsincode/d4events/internal/rotation"
	"github.com/friendsincode/d4events/internal/season"
	"github.com/friendsincode/d4events/internal/view"
	"github.com/friendsincode/d4events/internal/window"
)

// Snapshot is everything derived from one reading of the clock.
type Snapshot struct {
	At           time.Time           `json:"at" yaml:"at"`
	Boss         rotation.Occurrence `json:"boss" yaml:"boss"`
	BossView     view.BossView       `json:"boss_view" yaml:"boss_view"`
	Helltide     window.Status       `json:"helltide" yaml:"helltide"`
	HelltideView view.HelltideView   `json:"helltide_view" yaml:"helltide_view"`
	Season       season.Info         `json:"season" yaml:"season"`
	SeasonView   view.SeasonView     `json:"season_view" yaml:"season_view"`
}

// Transition is published when a card's status label changes between ticks.
type Transition struct {
	Card string      `json:"card"`
	From view.Status `json:"from"`
	To   view.Status `json:"to"`
	At   time.Time   `json:"at"`
}

// Evaluator holds the read-only schedules.
type Evaluator struct {
	boss     *rotation.Resolver
	helltide window.Window
	seasons  season.Schedule
}

// NewEvaluator builds an evaluator from explicit schedules.
func NewEvaluator(boss *rotation.Resolver, helltide window.Window, seasons season.Schedule) *Evaluator {
	return &Evaluator{boss: boss, helltide: helltide, seasons: seasons}
}

// DefaultEvaluator uses the built-in world boss, helltide and season schedules.
func DefaultEvaluator() *Evaluator {
	return NewEvaluator(rotation.WorldBoss(), window.Helltide(), season.Default())
}

// Boss returns the world boss resolver.
func (e *Evaluator) Boss() *rotation.Resolver { return e.boss }

// Evaluate computes a snapshot for now. It has no side effects.
func (e *Evaluator) Evaluate(now time.Time) Snapshot {
	occ := e.boss.Next(now)
	status := e.helltide.Status(now)
	info := e.seasons.Resolve(now)

	return Snapshot{
		At:           now,
		Boss:         occ,
		BossView:     view.BossCard(occ, e.boss.Interval()),
		Helltide:     status,
		HelltideView: view.HelltideCard(status),
		Season:       info,
		SeasonView:   view.SeasonCard(info),
	}
}
