/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/d4events/internal/inject"
	"github.com/friendsincode/d4events/internal/rotation"
	"github.com/friendsincode/d4events/internal/tracker"
)

// One second before the first world boss spawn.
var testInstant = rotation.WorldBossAnchor.Add(-time.Second)

func TestWriteStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	snap := tracker.DefaultEvaluator().Evaluate(testInstant)
	if err := writeStatus(&buf, snap, "json", true); err != nil {
		t.Fatalf("writeStatus: %v", err)
	}

	var got statusReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Boss.Index != 0 || got.Boss.Name != "Avarice" || got.Boss.RemainingSeconds != 1 {
		t.Fatalf("unexpected boss report %+v", got.Boss)
	}
	if got.Boss.Status != "SOON" {
		t.Fatalf("boss status %q, want SOON", got.Boss.Status)
	}
	if !got.Helltide.Active || got.Helltide.Status != "ACTIVE" {
		t.Fatalf("unexpected helltide report %+v", got.Helltide)
	}
	if !got.Boss.SpawnAt.Equal(rotation.WorldBossAnchor) {
		t.Fatalf("spawn at %v, want %v", got.Boss.SpawnAt, rotation.WorldBossAnchor)
	}
}

func TestWriteStatusYAML(t *testing.T) {
	var buf bytes.Buffer
	snap := tracker.DefaultEvaluator().Evaluate(testInstant)
	if err := writeStatus(&buf, snap, "yaml", true); err != nil {
		t.Fatalf("writeStatus: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	boss, ok := got["world_boss"].(map[string]any)
	if !ok {
		t.Fatalf("world_boss missing:\n%s", buf.String())
	}
	if boss["zone"] != "Fractured Peaks" {
		t.Fatalf("zone = %v", boss["zone"])
	}
}

func TestWriteStatusText(t *testing.T) {
	var buf bytes.Buffer
	snap := tracker.DefaultEvaluator().Evaluate(testInstant)
	if err := writeStatus(&buf, snap, "text", true); err != nil {
		t.Fatalf("writeStatus: %v", err)
	}
	if !strings.Contains(buf.String(), "WORLD BOSS") || !strings.Contains(buf.String(), "HELLTIDE") {
		t.Fatalf("unexpected text output:\n%s", buf.String())
	}
}

func TestWriteStatusUnknownFormat(t *testing.T) {
	snap := tracker.DefaultEvaluator().Evaluate(testInstant)
	if err := writeStatus(&bytes.Buffer{}, snap, "xml", true); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteUpcoming(t *testing.T) {
	var buf bytes.Buffer
	occ := rotation.WorldBoss().Upcoming(testInstant, 3)
	if err := writeUpcoming(&buf, occ, time.UTC, true); err != nil {
		t.Fatalf("writeUpcoming: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected escape sequences in non-terminal output:\n%s", out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header, rule and 3 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "BOSS") || !strings.Contains(lines[0], "SPAWNS AT") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "─") {
		t.Fatalf("missing header rule: %q", lines[1])
	}
	for i, want := range []string{"Avarice", "Azmodan", "Avarice"} {
		if !strings.Contains(lines[i+2], want) {
			t.Errorf("row %d = %q, want %s", i, lines[i+2], want)
		}
	}
	if !strings.Contains(lines[2], "Mon 08:30 UTC") || !strings.Contains(lines[2], "1s") {
		t.Errorf("first spawn row = %q", lines[2])
	}
}

func TestValidateCount(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 1},
		{n: 5},
		{n: maxUpcoming},
		{n: 0, wantErr: true},
		{n: -3, wantErr: true},
		{n: maxUpcoming + 1, wantErr: true},
		{n: maxUpcoming * 1000, wantErr: true},
	}
	for _, tt := range tests {
		if err := validateCount(tt.n); (err != nil) != tt.wantErr {
			t.Errorf("validateCount(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestWriteReport(t *testing.T) {
	report := inject.Report{Outcomes: []inject.Outcome{
		{Name: "css", Result: inject.ResultInserted, Offset: 42},
		{Name: "markup", Result: inject.ResultSkipped},
	}}

	var buf bytes.Buffer
	writeReport(&buf, report, true)
	want := "css       would insert at offset 42\nmarkup    already present\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
