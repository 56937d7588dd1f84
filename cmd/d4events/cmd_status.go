/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/d4events/internal/console"
	"github.com/friendsincode/d4events/internal/tracker"
	"github.com/friendsincode/d4events/internal/view"
)

var (
	statusFormat string
	statusAt     string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current world boss, helltide and season state",
	Long: `Print a one-shot snapshot of every tracker card.

Examples:
  # Human readable
  d4events status

  # Machine readable, at a fixed instant
  d4events status --format json --at 2026-01-01T00:30:00Z
`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "o", "text", "Output format: text, json or yaml")
	statusCmd.Flags().StringVar(&statusAt, "at", "", "Evaluate at this RFC 3339 instant instead of now")
	rootCmd.AddCommand(statusCmd)
}

type bossReport struct {
	Index            int64       `json:"index" yaml:"index"`
	Slot             int         `json:"slot" yaml:"slot"`
	Name             string      `json:"name" yaml:"name"`
	Zone             string      `json:"zone" yaml:"zone"`
	SpawnAt          time.Time   `json:"spawn_at" yaml:"spawn_at"`
	RemainingSeconds int64       `json:"remaining_seconds" yaml:"remaining_seconds"`
	Status           view.Status `json:"status" yaml:"status"`
}

type helltideReport struct {
	Active           bool        `json:"active" yaml:"active"`
	RemainingSeconds int64       `json:"remaining_seconds" yaml:"remaining_seconds"`
	Progress         float64     `json:"progress" yaml:"progress"`
	Status           view.Status `json:"status" yaml:"status"`
}

type statusReport struct {
	At       time.Time       `json:"at" yaml:"at"`
	Boss     bossReport      `json:"world_boss" yaml:"world_boss"`
	Helltide helltideReport  `json:"helltide" yaml:"helltide"`
	Season   view.SeasonView `json:"season" yaml:"season"`
}

func newStatusReport(s tracker.Snapshot) statusReport {
	return statusReport{
		At: s.At.UTC(),
		Boss: bossReport{
			Index:            s.Boss.Index,
			Slot:             s.Boss.Slot,
			Name:             s.Boss.Entry.Label,
			Zone:             s.Boss.Entry.Zone,
			SpawnAt:          s.Boss.At.UTC(),
			RemainingSeconds: s.Boss.RemainingMillis / 1000,
			Status:           s.BossView.Status,
		},
		Helltide: helltideReport{
			Active:           s.Helltide.Active,
			RemainingSeconds: int64(s.Helltide.Remaining / time.Second),
			Progress:         s.Helltide.Progress,
			Status:           s.HelltideView.Status,
		},
		Season: s.SeasonView,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if statusAt != "" {
		at, err := time.Parse(time.RFC3339, statusAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
		now = at
	}

	snap := tracker.DefaultEvaluator().Evaluate(now)
	return writeStatus(cmd.OutOrStdout(), snap, statusFormat, cfg.NoColor)
}

func writeStatus(w io.Writer, snap tracker.Snapshot, format string, noColor bool) error {
	switch format {
	case "text", "":
		_, err := io.WriteString(w, console.New(w, console.Options{NoColor: noColor}).Frame(snap))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newStatusReport(snap))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newStatusReport(snap)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
