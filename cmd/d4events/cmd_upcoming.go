/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/friendsincode/d4events/internal/rotation"
)

// maxUpcoming bounds --count to about a month of spawns.
const maxUpcoming = 500

var (
	upcomingCount int
	upcomingLocal bool
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List the next world boss spawns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateCount(upcomingCount); err != nil {
			return err
		}
		loc := time.UTC
		if upcomingLocal {
			loc = time.Local
		}
		occ := rotation.WorldBoss().Upcoming(time.Now(), upcomingCount)
		return writeUpcoming(cmd.OutOrStdout(), occ, loc, cfg.NoColor)
	},
}

func init() {
	upcomingCmd.Flags().IntVarP(&upcomingCount, "count", "n", 5, "Number of spawns to list")
	upcomingCmd.Flags().BoolVar(&upcomingLocal, "local", false, "Show times in the local time zone")
	rootCmd.AddCommand(upcomingCmd)
}

func validateCount(n int) error {
	if n <= 0 || n > maxUpcoming {
		return fmt.Errorf("--count must be between 1 and %d, got %d", maxUpcoming, n)
	}
	return nil
}

func writeUpcoming(w io.Writer, occ []rotation.Occurrence, loc *time.Location, noColor bool) error {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	if !noColor {
		header = header.Foreground(lipgloss.Color("#d4af37"))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(r.NewStyle()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("#", "BOSS", "ZONE", "SPAWNS AT", "IN")

	for _, o := range occ {
		t.Row(
			strconv.FormatInt(o.Index, 10),
			o.Entry.Label,
			o.Entry.Zone,
			o.At.In(loc).Format("Mon 15:04 MST"),
			(time.Duration(o.RemainingMillis/1000) * time.Second).String(),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
