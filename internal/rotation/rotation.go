/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package rotation resolves the next occurrence of a rotating event whose
// spawns repeat at a fixed interval from a known anchor.
package rotation

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrInvalidInterval is returned when the spawn interval is not positive.
	ErrInvalidInterval = errors.New("rotation interval must be a positive whole number of milliseconds")
	// ErrEmptyTable is returned when the rotation has no entries.
	ErrEmptyTable = errors.New("rotation table is empty")
)

// Entry is one position in the rotation.
type Entry struct {
	Label string `json:"label" yaml:"label"`
	Zone  string `json:"zone" yaml:"zone"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Table is the ordered rotation. Order defines the spawn sequence.
type Table []Entry

// Occurrence is one scheduled spawn.
//
// Remaining saturates at the time.Duration range (about 292 years).
// RemainingMillis is exact for any pair of instants.
type Occurrence struct {
	Index           int64         `json:"index" yaml:"index"`
	Slot            int           `json:"slot" yaml:"slot"`
	At              time.Time     `json:"at" yaml:"at"`
	Entry           Entry         `json:"entry" yaml:"entry"`
	Remaining       time.Duration `json:"remaining" yaml:"remaining"`
	RemainingMillis int64         `json:"remaining_ms" yaml:"remaining_ms"`
}

// Spawning reports whether the occurrence is happening at the evaluated instant.
func (o Occurrence) Spawning() bool {
	return o.Remaining <= 0
}

// Resolver maps wall-clock instants onto the rotation.
type Resolver struct {
	anchor     time.Time
	interval   time.Duration
	intervalMs int64
	table      Table
}

// NewResolver validates the constants and builds a resolver. The table is
// copied so later mutation by the caller cannot shift the rotation.
func NewResolver(anchor time.Time, interval time.Duration, table Table) (*Resolver, error) {
	if interval < time.Millisecond || interval%time.Millisecond != 0 {
		return nil, ErrInvalidInterval
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	t := make(Table, len(table))
	copy(t, table)
	return &Resolver{anchor: anchor, interval: interval, intervalMs: interval.Milliseconds(), table: t}, nil
}

// Anchor returns the instant of occurrence 0.
func (r *Resolver) Anchor() time.Time { return r.anchor }

// Interval returns the spacing between occurrences.
func (r *Resolver) Interval() time.Duration { return r.interval }

// Table returns a copy of the rotation.
func (r *Resolver) Table() Table {
	t := make(Table, len(r.table))
	copy(t, r.table)
	return t
}

// Next returns the first occurrence strictly after the last one at or before
// now. When now precedes the anchor the anchor itself is returned, whatever the
// arithmetic index would have been.
func (r *Resolver) Next(now time.Time) Occurrence {
	var next int64
	if !now.Before(r.anchor) {
		next = floorDiv(MillisBetween(r.anchor, now), r.intervalMs) + 1
	}
	return r.at(next, now)
}

// Upcoming returns count consecutive occurrences starting with Next(now).
func (r *Resolver) Upcoming(now time.Time, count int) []Occurrence {
	if count <= 0 {
		return nil
	}
	first := r.Next(now)
	out := make([]Occurrence, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, r.at(first.Index+int64(i), now))
	}
	return out
}

// Occurrence returns occurrence n measured against now. Indexes whose
// offset from the anchor does not fit in int64 milliseconds are clamped.
func (r *Resolver) Occurrence(n int64, now time.Time) Occurrence {
	return r.at(n, now)
}

func (r *Resolver) at(n int64, now time.Time) Occurrence {
	at := addMillis(r.anchor, mulClamp(n, r.intervalMs))
	slot := SlotFor(n, len(r.table))
	return Occurrence{
		Index:           n,
		Slot:            slot,
		At:              at,
		Entry:           r.table[slot],
		Remaining:       at.Sub(now),
		RemainingMillis: MillisBetween(now, at),
	}
}

// MillisBetween returns to - from in whole milliseconds, truncated toward
// zero like time.Duration.Milliseconds, without the Duration range limit.
func MillisBetween(from, to time.Time) int64 {
	ms := to.UnixMilli() - from.UnixMilli()
	sub := int64(to.Nanosecond()%1e6) - int64(from.Nanosecond()%1e6)
	switch {
	case ms > 0 && sub < 0:
		ms--
	case ms < 0 && sub > 0:
		ms++
	}
	return ms
}

// addMillis offsets t by ms milliseconds, keeping its sub-millisecond part
// and location. Unlike t.Add it is not limited to the Duration range.
func addMillis(t time.Time, ms int64) time.Time {
	sub := time.Duration(t.Nanosecond() % 1e6)
	return time.UnixMilli(t.UnixMilli() + ms).Add(sub).In(t.Location())
}

func mulClamp(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a {
		if (a < 0) != (b < 0) {
			return math.MinInt64 / 2
		}
		return math.MaxInt64 / 2
	}
	return p
}

// SlotFor maps any occurrence index, including negative ones, onto [0, length).
func SlotFor(n int64, length int) int {
	l := int64(length)
	return int(((n % l) + l) % l)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
