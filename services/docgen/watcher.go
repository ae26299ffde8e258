// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docgen

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures the project watcher.
type WatchOptions struct {
	// Debounce is how long to wait for more changes before regenerating.
	// Default: 300ms
	Debounce time.Duration

	// BufferSize is the size of the change buffer channel.
	// Default: 1000
	BufferSize int
}

// DefaultWatchOptions returns sensible defaults.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:   300 * time.Millisecond,
		BufferSize: 1000,
	}
}

// fileChange is one filesystem event the watcher acts on.
type fileChange struct {
	path string
	op   fsnotify.Op
	at   time.Time
}

// Watcher keeps the doc store in sync with a project tree.
//
// # Description
//
// Watches a project root recursively and regenerates docs when source
// files change. Events are debounced so a burst of writes during active
// editing triggers one regeneration, not one per keystroke. Deleted and
// renamed-away files have their docs removed.
//
// # Thread Safety
//
// Safe for concurrent use. Regeneration runs on a single goroutine; the
// service's own per-file locks protect against overlap with HTTP-driven
// runs.
type Watcher struct {
	svc      *Service
	root     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	changes  chan fileChange
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// NewWatcher creates a watcher for the given project root.
//
// Inputs:
//
//	svc - Service that performs the actual regeneration.
//	root - Absolute path to the directory to watch.
//	opts - Watch options; zero values fall back to defaults.
//
// Outputs:
//
//	*Watcher - Ready-to-use watcher (call Start to begin watching).
//	error - Non-nil if the underlying fsnotify watcher could not be created.
func NewWatcher(svc *Service, root string, opts WatchOptions) (*Watcher, error) {
	if err := svc.validateProjectRoot(root); err != nil {
		return nil, err
	}

	defaults := DefaultWatchOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		svc:      svc,
		root:     root,
		fsw:      fsw,
		debounce: opts.Debounce,
		logger:   svc.logger.With(slog.String("watch_root", root)),
		changes:  make(chan fileChange, opts.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
//
// Description:
//
//	Recursively watches the root and all non-excluded subdirectories.
//	Spawns two goroutines: an event processor converting fsnotify events
//	into changes, and a debouncer that batches changes and regenerates.
//	Both exit when Stop is called or the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("watching project")
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// addRecursive adds a directory and all subdirectories to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && excludedDir(d.Name(), w.svc.config.ExcludeDirs) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// processEvents filters fsnotify events and feeds the debounce channel.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories join the watch list; their contents appear
			// as separate create events.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !excludedDir(filepath.Base(event.Name), w.svc.config.ExcludeDirs) {
						w.fsw.Add(event.Name)
					}
					continue
				}
			}

			if !w.svc.isSourceFile(event.Name) {
				continue
			}

			select {
			case w.changes <- fileChange{path: event.Name, op: event.Op, at: time.Now()}:
			default:
				// Buffer full; the debouncer will regenerate from the
				// changes it already holds.
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// debounceLoop batches changes and applies them after the quiet window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []fileChange
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			w.apply(ctx, dedupeChanges(batch))
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			flush()
		}
	}
}

// apply regenerates or removes docs for one debounced batch.
func (w *Watcher) apply(ctx context.Context, changes []fileChange) {
	for _, change := range changes {
		switch {
		case change.op.Has(fsnotify.Remove) || change.op.Has(fsnotify.Rename):
			resp := w.svc.RemoveFile(change.path)
			recordWatchEvent("remove")
			w.logger.Info("docs removed for deleted file",
				slog.String("file_path", change.path),
				slog.Int("removed", resp.Removed),
			)

		case change.op.Has(fsnotify.Write) || change.op.Has(fsnotify.Create):
			res, err := w.svc.GenerateFile(ctx, change.path)
			recordWatchEvent("write")
			if err != nil {
				w.logger.Warn("regeneration failed",
					slog.String("file_path", change.path),
					slog.Any("error", err),
				)
				continue
			}
			w.logger.Info("docs regenerated",
				slog.String("file_path", change.path),
				slog.Int("docs", res.DocsProduced),
			)
		}
	}
}

// dedupeChanges keeps the most recent change per path.
func dedupeChanges(changes []fileChange) []fileChange {
	seen := make(map[string]int)
	result := make([]fileChange, 0, len(changes))

	for _, change := range changes {
		if idx, ok := seen[change.path]; ok {
			result[idx] = change
		} else {
			seen[change.path] = len(result)
			result = append(result, change)
		}
	}

	return result
}
