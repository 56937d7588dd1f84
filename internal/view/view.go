/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package view maps resolver output onto display records. Every function here
// is pure; renderers (terminal, page script) only read the records.
package view

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/friendsincode/d4events/internal/rotation"
	"github.com/friendsincode/d4events/internal/window"
)

// Status is the badge text shown on a card.
type Status string

const (
	StatusWaiting     Status = "WAITING"
	StatusApproaching Status = "APPROACHING"
	StatusSoon        Status = "SOON"
	StatusSpawning    Status = "SPAWNING"
	StatusActive      Status = "ACTIVE"
)

// BadgeClass returns the style class paired with the status.
func (s Status) BadgeClass() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusActive:
		return "active"
	default:
		return "soon"
	}
}

// Boss thresholds, compared against the remaining time.
const (
	SoonThreshold        = 15 * time.Minute
	ApproachingThreshold = 30 * time.Minute
)

// RingCircumference is the stroke length of the progress ring (r=42).
const RingCircumference = 264.0

// BossView holds every display slot of the world boss card.
type BossView struct {
	Name       string  `json:"name" yaml:"name"`
	Zone       string  `json:"zone" yaml:"zone"`
	Icon       string  `json:"icon" yaml:"icon"`
	Hours      string  `json:"hours" yaml:"hours"`
	Minutes    string  `json:"minutes" yaml:"minutes"`
	Seconds    string  `json:"seconds" yaml:"seconds"`
	Status     Status  `json:"status" yaml:"status"`
	BadgeClass string  `json:"badge_class" yaml:"badge_class"`
	CardClass  string  `json:"card_class,omitempty" yaml:"card_class,omitempty"`
	Urgent     bool    `json:"urgent" yaml:"urgent"`
	RingOffset float64 `json:"ring_offset" yaml:"ring_offset"`
}

// BossStatus classifies the time left before a spawn.
func BossStatus(remaining time.Duration) Status {
	switch {
	case remaining <= 0:
		return StatusSpawning
	case remaining < SoonThreshold:
		return StatusSoon
	case remaining < ApproachingThreshold:
		return StatusApproaching
	default:
		return StatusWaiting
	}
}

// BossCard builds the world boss card for an occurrence.
func BossCard(o rotation.Occurrence, interval time.Duration) BossView {
	v := BossView{
		Name: o.Entry.Label,
		Zone: o.Entry.Zone,
		Icon: o.Entry.Icon,
	}

	v.Status = BossStatus(o.Remaining)
	v.BadgeClass = v.Status.BadgeClass()

	switch v.Status {
	case StatusSpawning:
		v.Hours, v.Minutes, v.Seconds = "00", "00", "00"
		v.Urgent = true
		v.CardClass = "urgent"
		return v
	case StatusSoon:
		v.Urgent = true
		v.CardClass = "urgent"
	case StatusApproaching:
		v.CardClass = "warning"
	}

	h, m, s := clockParts(o.RemainingMillis)
	v.Hours, v.Minutes, v.Seconds = pad(h), pad(m), pad(s)
	if ms := interval.Milliseconds(); ms > 0 {
		v.RingOffset = RingCircumference * float64(o.RemainingMillis) / float64(ms)
	}
	return v
}

// HelltideView holds every display slot of the helltide card.
type HelltideView struct {
	Title         string  `json:"title" yaml:"title"`
	Subtext       string  `json:"subtext" yaml:"subtext"`
	Minutes       string  `json:"minutes" yaml:"minutes"`
	Seconds       string  `json:"seconds" yaml:"seconds"`
	Timer         string  `json:"timer" yaml:"timer"`
	Status        Status  `json:"status" yaml:"status"`
	BadgeClass    string  `json:"badge_class" yaml:"badge_class"`
	Active        bool    `json:"active" yaml:"active"`
	RingOffset    float64 `json:"ring_offset" yaml:"ring_offset"`
	BarWidth      string  `json:"bar_width" yaml:"bar_width"`
	ProgressLabel string  `json:"progress_label" yaml:"progress_label"`
}

// HelltideCard builds the helltide card for a window status.
func HelltideCard(s window.Status) HelltideView {
	total := int64(s.Remaining / time.Minute)
	secs := int64(s.Remaining % time.Minute / time.Second)
	timeText := pad(total) + ":" + pad(secs)

	v := HelltideView{
		Minutes: pad(total),
		Seconds: pad(secs),
		Active:  s.Active,
	}

	if s.Active {
		v.Title = "HELLTIDE ACTIVE"
		v.Subtext = "Demons are spawning!"
		v.Timer = timeText + " left"
		v.Status = StatusActive
		v.RingOffset = RingCircumference * (1 - s.Progress)
		v.BarWidth = strconv.FormatFloat(s.Progress*100, 'f', -1, 64) + "%"
		v.ProgressLabel = fmt.Sprintf("%d%% complete", int(math.Round(s.Progress*100)))
	} else {
		v.Title = "Next Helltide"
		v.Subtext = "Waiting for next event..."
		v.Timer = "in " + timeText
		v.Status = StatusWaiting
		v.RingOffset = RingCircumference
		v.BarWidth = "0%"
		v.ProgressLabel = "Starts in " + timeText
	}
	v.BadgeClass = v.Status.BadgeClass()
	return v
}

// clockParts splits a millisecond count into hours, minutes and seconds.
func clockParts(ms int64) (h, m, s int64) {
	return ms / 3600000, ms % 3600000 / 60000, ms % 60000 / 1000
}

func pad(n int64) string {
	return fmt.Sprintf("%02d", n)
}
