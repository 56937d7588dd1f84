/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/d4events/internal/config"
	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/logging"
	"github.com/friendsincode/d4events/internal/telemetry"
	"github.com/friendsincode/d4events/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "d4events",
	Short:         "Diablo IV world boss and helltide tracker",
	Long:          "d4events computes world boss spawns, helltide windows and season countdowns, and splices a live tracker widget into static pages.",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and the logger for every command.
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}
	return nil
}

// newBus returns an event bus whose drops are counted.
func newBus() *events.Bus {
	bus := events.NewBus()
	bus.OnDrop(func(t events.EventType) {
		telemetry.EventsDroppedTotal.WithLabelValues(string(t)).Inc()
	})
	return bus
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startTracing installs the tracer provider and returns its shutdown hook.
func startTracing(ctx context.Context) (func(), error) {
	tp, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize tracer: %w", err)
	}
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}, nil
}
