/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package widget renders the event tracker blocks that get spliced into a page.
package widget

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"text/template"

	"github.com/friendsincode/d4events/internal/rotation"
	"github.com/friendsincode/d4events/internal/tracker"
	"github.com/friendsincode/d4events/internal/view"
	"github.com/friendsincode/d4events/internal/window"
)

//go:embed assets/*
var assets embed.FS

var templates = template.Must(template.ParseFS(assets, "assets/*.tmpl"))

// Signatures mark each block so a page that already carries it can be detected.
const (
	SignatureCSS    = "/* d4events:tracker-css */"
	SignatureDefs   = "<!-- d4events:svg-defs -->"
	SignatureMarkup = "<!-- d4events:tracker-markup -->"
	SignatureScript = "<!-- d4events:tracker-script -->"
)

// Blocks are the four fragments a page needs.
type Blocks struct {
	CSS    string
	Defs   string
	Markup string
	Script string
}

// IDs binds every display slot to its element id. The script receives the
// same mapping, so markup and script cannot drift apart.
type IDs struct {
	BossCard              string
	BossBadge             string
	BossRing              string
	BossIcon              string
	BossName              string
	BossZone              string
	BossHours             string
	BossMinutes           string
	BossSeconds           string
	HelltideCard          string
	HelltideBadge         string
	HelltideRing          string
	HelltideTitle         string
	HelltideSubtext       string
	HelltideMinutes       string
	HelltideSeconds       string
	HelltideBar           string
	HelltideProgressLabel string
	HelltideTimer         string
}

// DefaultIDs returns the ids used by the stock markup.
func DefaultIDs() IDs {
	return IDs{
		BossCard:              "worldBossCard",
		BossBadge:             "bossStatus",
		BossRing:              "bossProgressRing",
		BossIcon:              "bossIcon",
		BossName:              "bossName",
		BossZone:              "bossZone",
		BossHours:             "bossHours",
		BossMinutes:           "bossMinutes",
		BossSeconds:           "bossSeconds",
		HelltideCard:          "helltideCard",
		HelltideBadge:         "helltideStatus",
		HelltideRing:          "helltideProgressRing",
		HelltideTitle:         "helltideTitle",
		HelltideSubtext:       "helltideSubtext",
		HelltideMinutes:       "helltideMinutes",
		HelltideSeconds:       "helltideSeconds",
		HelltideBar:           "helltideProgressBar",
		HelltideProgressLabel: "helltideProgressLabel",
		HelltideTimer:         "helltideTimer",
	}
}

type rotationEntry struct {
	Label string `json:"label"`
	Zone  string `json:"zone"`
	Icon  string `json:"icon"`
}

type templateData struct {
	IDs              IDs
	IDsJSON          string
	RotationJSON     string
	AnchorMS         int64
	IntervalMS       int64
	HelltidePeriodMS int64
	HelltideActiveMS int64
	SoonMS           int64
	ApproachingMS    int64
	TickMS           int64
	Circumference    string
}

// Render builds the blocks for the built-in world boss rotation and helltide window.
func Render() (Blocks, error) {
	return RenderWith(rotation.WorldBoss(), window.Helltide(), DefaultIDs())
}

// RenderWith builds the blocks for the given schedules and element ids.
func RenderWith(boss *rotation.Resolver, helltide window.Window, ids IDs) (Blocks, error) {
	data, err := newTemplateData(boss, helltide, ids)
	if err != nil {
		return Blocks{}, err
	}

	css, err := assets.ReadFile("assets/tracker.css")
	if err != nil {
		return Blocks{}, fmt.Errorf("read stylesheet: %w", err)
	}
	defs, err := assets.ReadFile("assets/defs.html")
	if err != nil {
		return Blocks{}, fmt.Errorf("read svg defs: %w", err)
	}

	markup, err := execute("tracker.html.tmpl", data)
	if err != nil {
		return Blocks{}, err
	}
	script, err := execute("tracker.js.tmpl", data)
	if err != nil {
		return Blocks{}, err
	}

	return Blocks{
		CSS:    string(css),
		Defs:   string(defs),
		Markup: markup,
		Script: script,
	}, nil
}

func newTemplateData(boss *rotation.Resolver, helltide window.Window, ids IDs) (templateData, error) {
	table := boss.Table()
	entries := make([]rotationEntry, len(table))
	for i, e := range table {
		entries[i] = rotationEntry{Label: e.Label, Zone: e.Zone, Icon: e.Icon}
	}

	rot, err := json.Marshal(entries)
	if err != nil {
		return templateData{}, fmt.Errorf("encode rotation: %w", err)
	}
	idJSON, err := json.Marshal(ids)
	if err != nil {
		return templateData{}, fmt.Errorf("encode ids: %w", err)
	}

	return templateData{
		IDs:              ids,
		IDsJSON:          string(idJSON),
		RotationJSON:     string(rot),
		AnchorMS:         boss.Anchor().UnixMilli(),
		IntervalMS:       boss.Interval().Milliseconds(),
		HelltidePeriodMS: helltide.Period.Milliseconds(),
		HelltideActiveMS: helltide.Active.Milliseconds(),
		SoonMS:           view.SoonThreshold.Milliseconds(),
		ApproachingMS:    view.ApproachingThreshold.Milliseconds(),
		TickMS:           tracker.TickPeriod.Milliseconds(),
		Circumference:    strconv.FormatFloat(view.RingCircumference, 'f', -1, 64),
	}, nil
}

func execute(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
