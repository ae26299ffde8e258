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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
)

func TestDedupeChanges_KeepsMostRecentPerPath(t *testing.T) {
	t0 := time.Now()
	changes := []fileChange{
		{path: "a.js", op: fsnotify.Create, at: t0},
		{path: "b.js", op: fsnotify.Write, at: t0.Add(time.Millisecond)},
		{path: "a.js", op: fsnotify.Write, at: t0.Add(2 * time.Millisecond)},
		{path: "a.js", op: fsnotify.Remove, at: t0.Add(3 * time.Millisecond)},
	}

	deduped := dedupeChanges(changes)
	if len(deduped) != 2 {
		t.Fatalf("len = %d, want 2", len(deduped))
	}

	// First-seen order is preserved; the entry itself is the latest op.
	if deduped[0].path != "a.js" || !deduped[0].op.Has(fsnotify.Remove) {
		t.Errorf("deduped[0] = %+v, want latest a.js change", deduped[0])
	}
	if deduped[1].path != "b.js" || !deduped[1].op.Has(fsnotify.Write) {
		t.Errorf("deduped[1] = %+v, want b.js write", deduped[1])
	}
}

func TestDedupeChanges_Empty(t *testing.T) {
	if got := dedupeChanges(nil); len(got) != 0 {
		t.Errorf("dedupe(nil) = %v, want empty", got)
	}
}

func TestNewWatcher_ValidatesRoot(t *testing.T) {
	svc := newTestService(t)

	if _, err := NewWatcher(svc, "relative/root", DefaultWatchOptions()); !errors.Is(err, ErrRelativePath) {
		t.Errorf("err = %v, want ErrRelativePath", err)
	}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_RegeneratesOnWrite(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()

	w, err := NewWatcher(svc, root, WatchOptions{Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsWatching() {
		t.Fatal("IsWatching = false after Start")
	}

	path := filepath.Join(root, "live.js")
	if err := os.WriteFile(path, []byte("/** Live. */\nfunction live() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool {
		return len(svc.Store().Find(docdb.Query{FilePath: path})) > 0
	}) {
		t.Fatal("docs never appeared for written file")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool {
		return len(svc.Store().Find(docdb.Query{FilePath: path})) == 0
	}) {
		t.Fatal("docs never removed for deleted file")
	}
}

func TestWatcher_IgnoresNonSourceFiles(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()

	w, err := NewWatcher(svc, root, WatchOptions{Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if n := svc.Store().Len(); n != 0 {
		t.Errorf("store has %d docs after non-source write, want 0", n)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()

	w, err := NewWatcher(svc, root, DefaultWatchOptions())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	w.Stop()
	w.Stop()
	if w.IsWatching() {
		t.Error("IsWatching = true after Stop")
	}
}
