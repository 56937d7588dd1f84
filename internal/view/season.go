/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package view

import (
	"fmt"

	"github.com/friendsincode/d4events/internal/season"
)

// SeasonView is the season banner.
type SeasonView struct {
	Title     string `json:"title" yaml:"title"`
	Countdown string `json:"countdown,omitempty" yaml:"countdown,omitempty"`
	Next      string `json:"next,omitempty" yaml:"next,omitempty"`
}

// SeasonCard renders the season schedule into banner lines.
func SeasonCard(info season.Info) SeasonView {
	var v SeasonView

	switch {
	case info.Current == nil:
		v.Title = "No active season"
	case info.Current.Ended:
		v.Title = fmt.Sprintf("Season %d Ended", info.Current.Number)
	default:
		v.Title = fmt.Sprintf("Season %d: %s", info.Current.Number, info.Current.Name)
		if info.Current.Remaining != nil {
			v.Countdown = "Ends in " + countdownText(*info.Current.Remaining)
		}
	}

	if info.Next != nil && info.Next.Until != nil {
		name := info.Next.Name
		if name == "TBA" {
			name = "Coming Soon"
		}
		v.Next = fmt.Sprintf("Season %d (%s) starts in %s", info.Next.Number, name, countdownText(*info.Next.Until))
	}
	return v
}

func countdownText(c season.Countdown) string {
	return fmt.Sprintf("%dd %02d:%02d:%02d", c.Days, c.Hours, c.Minutes, c.Seconds)
}
