/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package window evaluates repeating active/inactive windows aligned to the
// Unix epoch.
package window

import (
	"errors"
	"time"
)

var (
	// ErrInvalidPeriod is returned when the period is not positive.
	ErrInvalidPeriod = errors.New("window period must be positive")
	// ErrInvalidActive is returned when the active span is negative or longer than the period.
	ErrInvalidActive = errors.New("window active duration must be within [0, period]")
)

// Window is active for the first Active of every Period.
type Window struct {
	Period time.Duration
	Active time.Duration
}

// Status is the evaluation of a window at one instant.
type Status struct {
	Active    bool          `json:"active" yaml:"active"`
	Remaining time.Duration `json:"remaining" yaml:"remaining"`
	// Progress is the elapsed fraction of the active span, in [0, 1).
	// It stays at 0 for the whole inactive span.
	Progress float64 `json:"progress" yaml:"progress"`
}

// New validates and returns a window.
func New(period, active time.Duration) (Window, error) {
	if period <= 0 {
		return Window{}, ErrInvalidPeriod
	}
	if active < 0 || active > period {
		return Window{}, ErrInvalidActive
	}
	return Window{Period: period, Active: active}, nil
}

// Phase returns the position of now within the current period. Periods
// that are a whole number of milliseconds are evaluated on Unix milliseconds,
// which stay defined far outside the UnixNano range.
func (w Window) Phase(now time.Time) time.Duration {
	if w.Period%time.Millisecond == 0 {
		p := w.Period.Milliseconds()
		ms := ((now.UnixMilli() % p) + p) % p
		return time.Duration(ms)*time.Millisecond + time.Duration(now.Nanosecond()%1e6)
	}
	p := int64(w.Period)
	return time.Duration(((now.UnixNano() % p) + p) % p)
}

// Status evaluates the window at now. Active covers [0, Active) of each period.
func (w Window) Status(now time.Time) Status {
	phase := w.Phase(now)
	if phase < w.Active {
		return Status{
			Active:    true,
			Remaining: w.Active - phase,
			Progress:  float64(phase) / float64(w.Active),
		}
	}
	return Status{Remaining: w.Period - phase}
}

// Helltide is on for 55 minutes of every hour.
func Helltide() Window {
	return Window{Period: time.Hour, Active: 55 * time.Minute}
}
