/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watcher calls onChange once a burst of writes to the page has settled.
// It watches the parent directory because editors often replace files by
// renaming a temporary copy over them.
type watcher struct {
	fw       *fsnotify.Watcher
	target   string
	debounce time.Duration
	onChange func(reason string)
	logger   zerolog.Logger
}

func newWatcher(target string, debounce time.Duration, onChange func(string), logger zerolog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	return &watcher{
		fw:       fw,
		target:   filepath.Clean(target),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

func (w *watcher) Run(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  fsnotify.Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			last = ev.Op
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		case <-fire:
			fire = nil
			w.logger.Info().Str("op", last.String()).Msg("page changed, reloading clients")
			w.onChange(last.String())
		}
	}
}

func (w *watcher) Close() error {
	return w.fw.Close()
}
