/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/d4events/internal/inject"
	"github.com/friendsincode/d4events/internal/preview"
	"github.com/friendsincode/d4events/internal/widget"
)

var (
	previewAddr   string
	previewWidget bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Serve a page locally and reload it on every save",
	Long: `Serve an HTML page (and the files next to it) with a live-reload client.

With --widget the tracker is spliced into the served copy only; the file on
disk is not modified.
`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewAddr, "addr", "", "Listen address (default from D4EVENTS_PREVIEW_BIND/PORT)")
	previewCmd.Flags().BoolVar(&previewWidget, "widget", false, "Splice the tracker into the served page")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	shutdown, err := startTracing(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	opts := preview.Options{
		File:            args[0],
		Addr:            cfg.PreviewAddr(),
		RateLimitPerSec: cfg.RateLimitPerSec,
		CORSOrigins:     cfg.CORSOrigins,
	}
	if previewAddr != "" {
		opts.Addr = previewAddr
	}
	if previewWidget {
		blocks, err := widget.Render()
		if err != nil {
			return fmt.Errorf("render widget: %w", err)
		}
		opts.Injections = inject.TrackerPlan(blocks)
	}

	srv, err := preview.New(opts, newBus(), logger)
	if err != nil {
		return fmt.Errorf("initialize preview server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("preview stopped")
	return nil
}
