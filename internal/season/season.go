/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package season resolves the current and next season from a fixed schedule.
package season

import "time"

// Season is one entry of the schedule. Start is inclusive, End exclusive.
type Season struct {
	Number int       `json:"season" yaml:"season"`
	Name   string    `json:"name" yaml:"name"`
	Start  time.Time `json:"start" yaml:"start"`
	End    time.Time `json:"end" yaml:"end"`
}

// Countdown splits a positive duration into calendar-ish parts.
type Countdown struct {
	Total   time.Duration `json:"total" yaml:"total"`
	Days    int           `json:"days" yaml:"days"`
	Hours   int           `json:"hours" yaml:"hours"`
	Minutes int           `json:"minutes" yaml:"minutes"`
	Seconds int           `json:"seconds" yaml:"seconds"`
}

// Current describes the running (or most recently ended) season.
type Current struct {
	Season    `yaml:",inline"`
	Ended     bool       `json:"ended" yaml:"ended"`
	Remaining *Countdown `json:"time_remaining,omitempty" yaml:"time_remaining,omitempty"`
}

// Upcoming describes the season after Current.
type Upcoming struct {
	Season `yaml:",inline"`
	Until  *Countdown `json:"time_until_start,omitempty" yaml:"time_until_start,omitempty"`
}

// Info is the resolved schedule at one instant.
type Info struct {
	Current *Current  `json:"current" yaml:"current"`
	Next    *Upcoming `json:"next" yaml:"next"`
}

// Schedule is an ordered list of seasons.
type Schedule []Season

var defaultSchedule = Schedule{
	{Number: 11, Name: "Divine Intervention", Start: utc("2026-01-21T17:00:00Z"), End: utc("2026-03-11T17:00:00Z")},
	{Number: 12, Name: "TBA", Start: utc("2026-03-11T17:00:00Z"), End: utc("2026-04-22T17:00:00Z")},
	{Number: 13, Name: "TBA", Start: utc("2026-04-22T17:00:00Z"), End: utc("2026-06-03T17:00:00Z")},
}

// Default returns a copy of the built-in schedule.
func Default() Schedule {
	s := make(Schedule, len(defaultSchedule))
	copy(s, defaultSchedule)
	return s
}

// Resolve finds the current and next season at now. Between or after known
// seasons the most recent ended season is reported as current; before all of
// them only Next is set.
func (s Schedule) Resolve(now time.Time) Info {
	currentIdx, nextIdx := -1, -1

	for i, season := range s {
		if !now.Before(season.Start) && now.Before(season.End) {
			currentIdx = i
			nextIdx = i + 1
			break
		}
		if now.Before(season.Start) && nextIdx < 0 {
			nextIdx = i
		}
	}

	if currentIdx < 0 {
		for i := len(s) - 1; i >= 0; i-- {
			if !s[i].End.After(now) {
				currentIdx = i
				nextIdx = i + 1
				break
			}
		}
		if currentIdx < 0 && len(s) > 0 {
			nextIdx = 0
		}
	}

	var info Info
	if currentIdx >= 0 {
		cur := &Current{Season: s[currentIdx]}
		if left := cur.End.Sub(now); left > 0 {
			cd := Split(left)
			cur.Remaining = &cd
		} else {
			cur.Ended = true
		}
		info.Current = cur
	}
	if nextIdx >= 0 && nextIdx < len(s) {
		next := &Upcoming{Season: s[nextIdx]}
		if until := next.Start.Sub(now); until > 0 {
			cd := Split(until)
			next.Until = &cd
		}
		info.Next = next
	}
	return info
}

// Split breaks d into days, hours, minutes and whole seconds.
func Split(d time.Duration) Countdown {
	return Countdown{
		Total:   d,
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d % (24 * time.Hour) / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic("season: bad schedule timestamp " + value)
	}
	return t
}
