/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/friendsincode/d4events/internal/console"
	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/tracker"
)

var watchBell bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live countdown in the terminal",
	Long:  "Redraw every tracker card once per second until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchBell, "bell", false, "Ring the terminal bell when a boss spawns or a helltide starts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	bus := newBus()
	svc := tracker.New(tracker.DefaultEvaluator(), bus, logger)
	out := console.New(cmd.OutOrStdout(), console.Options{
		NoColor: cfg.NoColor,
		Bell:    watchBell,
		Clear:   isTerminal(os.Stdout),
	})

	ticks := bus.Subscribe(events.EventTrackerTick)
	bossChanges := bus.Subscribe(events.EventBossStatus)
	helltideChanges := bus.Subscribe(events.EventHelltideStatus)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		render(ctx, out, ticks, bossChanges, helltideChanges)
	}()

	err := svc.Run(ctx)

	// The tracker has stopped publishing; closing the subscriptions ends render.
	bus.Unsubscribe(events.EventTrackerTick, ticks)
	bus.Unsubscribe(events.EventBossStatus, bossChanges)
	bus.Unsubscribe(events.EventHelltideStatus, helltideChanges)
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Debug().Msg("watch stopped")
	return nil
}

func render(ctx context.Context, out *console.Console, ticks, bossChanges, helltideChanges events.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ticks:
			if !ok {
				return
			}
			snap, isSnap := evt.Data.(tracker.Snapshot)
			if !isSnap {
				continue
			}
			if err := out.Draw(snap); err != nil {
				logger.Error().Err(err).Msg("draw failed")
				return
			}
		case evt, ok := <-bossChanges:
			if !ok {
				return
			}
			notify(out, evt)
		case evt, ok := <-helltideChanges:
			if !ok {
				return
			}
			notify(out, evt)
		}
	}
}

func notify(out *console.Console, evt events.Event) {
	t, ok := evt.Data.(tracker.Transition)
	if !ok {
		return
	}
	logger.Debug().Str("card", t.Card).Str("from", string(t.From)).Str("to", string(t.To)).Msg("status changed")
	if err := out.Notify(t); err != nil {
		logger.Warn().Err(err).Msg("bell failed")
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
