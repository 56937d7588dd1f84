/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package console draws tracker snapshots on a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/friendsincode/d4events/internal/tracker"
	"github.com/friendsincode/d4events/internal/view"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	bell        = "\a"
)

var (
	colorUrgent  = lipgloss.Color("#ef4444")
	colorWarning = lipgloss.Color("#f97316")
	colorActive  = lipgloss.Color("#a855f7")
	colorWaiting = lipgloss.Color("#94a3b8")
	colorTitle   = lipgloss.Color("#d4af37")
)

// Options tweak the output.
type Options struct {
	// NoColor forces plain output regardless of the terminal.
	NoColor bool
	// Bell rings the terminal bell when a card starts spawning or goes active.
	Bell bool
	// Clear redraws in place instead of scrolling.
	Clear bool
}

// Console renders frames to a writer.
type Console struct {
	out  io.Writer
	opts Options

	title   lipgloss.Style
	card    lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	badges  map[string]lipgloss.Style
	borders map[string]lipgloss.Style
}

// New returns a console writing to out.
func New(out io.Writer, opts Options) *Console {
	r := lipgloss.NewRenderer(out)

	style := func(c lipgloss.Color) lipgloss.Style {
		s := r.NewStyle()
		if opts.NoColor {
			return s
		}
		return s.Foreground(c)
	}
	border := func(c lipgloss.Color) lipgloss.Style {
		s := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(44)
		if opts.NoColor {
			return s
		}
		return s.BorderForeground(c)
	}

	return &Console{
		out:   out,
		opts:  opts,
		title: style(colorTitle).Bold(true),
		card:  border(colorWaiting),
		label: r.NewStyle().Bold(true),
		muted: style(colorWaiting),
		badges: map[string]lipgloss.Style{
			"waiting": style(colorWaiting),
			"soon":    style(colorUrgent).Bold(true),
			"active":  style(colorActive).Bold(true),
		},
		borders: map[string]lipgloss.Style{
			"urgent":  border(colorUrgent),
			"warning": border(colorWarning),
			"active":  border(colorActive),
		},
	}
}

// Frame renders a snapshot without writing it.
func (c *Console) Frame(s tracker.Snapshot) string {
	var b strings.Builder
	b.WriteString(c.title.Render("LIVE EVENTS"))
	b.WriteString("  ")
	b.WriteString(c.muted.Render(s.At.UTC().Format("2006-01-02 15:04:05 UTC")))
	b.WriteString("\n")
	b.WriteString(c.bossCard(s.BossView))
	b.WriteString("\n")
	b.WriteString(c.helltideCard(s.HelltideView, s.Helltide.Progress))
	b.WriteString("\n")
	b.WriteString(c.seasonLines(s.SeasonView))
	return b.String()
}

func (c *Console) bossCard(v view.BossView) string {
	lines := []string{
		c.header("WORLD BOSS", v.Status, v.BadgeClass),
		fmt.Sprintf("%s %s", v.Icon, c.label.Render(v.Name)),
		c.muted.Render(v.Zone),
		fmt.Sprintf("%s:%s:%s", v.Hours, v.Minutes, v.Seconds),
	}
	return c.frame(v.CardClass).Render(strings.Join(lines, "\n"))
}

func (c *Console) helltideCard(v view.HelltideView, progress float64) string {
	class := ""
	if v.Active {
		class = "active"
	}
	lines := []string{
		c.header("HELLTIDE", v.Status, v.BadgeClass),
		c.label.Render(v.Title),
		c.muted.Render(v.Subtext),
		v.Timer,
		progressBar(progress, 30) + " " + c.muted.Render(v.ProgressLabel),
	}
	return c.frame(class).Render(strings.Join(lines, "\n"))
}

func (c *Console) seasonLines(v view.SeasonView) string {
	lines := []string{c.label.Render(v.Title)}
	if v.Countdown != "" {
		lines = append(lines, c.muted.Render(v.Countdown))
	}
	if v.Next != "" {
		lines = append(lines, c.muted.Render(v.Next))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (c *Console) header(name string, status view.Status, badgeClass string) string {
	badge, ok := c.badges[badgeClass]
	if !ok {
		badge = c.muted
	}
	return c.label.Render(name) + "  " + badge.Render(string(status))
}

func (c *Console) frame(class string) lipgloss.Style {
	if s, ok := c.borders[class]; ok {
		return s
	}
	return c.card
}

func progressBar(progress float64, width int) string {
	filled := int(float64(width) * progress)
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// Draw writes a frame, clearing the screen first when configured.
func (c *Console) Draw(s tracker.Snapshot) error {
	frame := c.Frame(s)
	if c.opts.Clear {
		frame = clearScreen + frame
	}
	_, err := io.WriteString(c.out, frame)
	return err
}

// Notify rings the bell for transitions into SPAWNING or ACTIVE.
func (c *Console) Notify(t tracker.Transition) error {
	if !c.opts.Bell || !Alerts(t) {
		return nil
	}
	_, err := io.WriteString(c.out, bell)
	return err
}

// Alerts reports whether a transition deserves attention.
func Alerts(t tracker.Transition) bool {
	return t.To == view.StatusSpawning || t.To == view.StatusActive
}
