/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/friendsincode/d4events/internal/inject"
	"github.com/friendsincode/d4events/internal/widget"
)

var injectDryRun bool

var injectCmd = &cobra.Command{
	Use:   "inject <file>",
	Short: "Splice the live event tracker into an HTML page",
	Long: `Insert the tracker stylesheet, gradient defs, markup and countdown script
into an HTML page:

- styles before "/* Responsive */" (or "</style>")
- gradient defs after "<body>"
- markup after "</nav>"
- script before "</body>"

Blocks already present are left alone, so the command is safe to re-run.
A missing marker aborts the run without touching the file.

Examples:
  # Show what would change
  d4events inject index.html --dry-run

  # Update the page in place
  d4events inject index.html
`,
	Args: cobra.ExactArgs(1),
	RunE: runInject,
}

func init() {
	injectCmd.Flags().BoolVar(&injectDryRun, "dry-run", false, "Report changes without writing the file")
	rootCmd.AddCommand(injectCmd)
}

func runInject(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	shutdown, err := startTracing(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	blocks, err := widget.Render()
	if err != nil {
		return fmt.Errorf("render widget: %w", err)
	}

	path := args[0]
	report, err := inject.File(ctx, path, inject.Options{DryRun: injectDryRun}, inject.TrackerPlan(blocks)...)
	if err != nil {
		return err
	}

	writeReport(cmd.OutOrStdout(), report, injectDryRun)
	logger.Info().
		Str("file", path).
		Bool("dry_run", injectDryRun).
		Bool("changed", report.Changed()).
		Msg("inject finished")
	return nil
}

func writeReport(w io.Writer, report inject.Report, dryRun bool) {
	verb := "inserted"
	if dryRun {
		verb = "would insert"
	}
	for _, o := range report.Outcomes {
		switch o.Result {
		case inject.ResultInserted:
			fmt.Fprintf(w, "%-9s %s at offset %d\n", o.Name, verb, o.Offset)
		case inject.ResultSkipped:
			fmt.Fprintf(w, "%-9s already present\n", o.Name)
		}
	}
}
