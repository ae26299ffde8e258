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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb/badgerstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(DefaultServiceConfig()).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestGenerateSource_ProducesDocs(t *testing.T) {
	svc := newTestService(t)

	src := `/** Adds two numbers. */
function add(a, b) { return a + b; }
export let counter = 0;
`
	resp, err := svc.GenerateSource(context.Background(), "src/math.js", []byte(src))
	if err != nil {
		t.Fatalf("GenerateSource: %v", err)
	}

	if resp.DocsProduced < 4 {
		t.Errorf("DocsProduced = %d, want at least 4 (file, module, add, counter)", resp.DocsProduced)
	}
	if resp.Removed != 0 {
		t.Errorf("Removed = %d on first run, want 0", resp.Removed)
	}
	if resp.ContentHash == "" {
		t.Error("ContentHash is empty")
	}
	if resp.RunID == "" {
		t.Error("RunID is empty")
	}

	fileDoc, err := svc.Store().ByID(resp.FileDocID)
	if err != nil {
		t.Fatalf("ByID(FileDocID): %v", err)
	}
	if fileDoc.ContentHash != resp.ContentHash {
		t.Errorf("file doc hash = %q, want %q", fileDoc.ContentHash, resp.ContentHash)
	}

	fn := svc.Store().SearchByName("add", 1)
	if len(fn) != 1 || fn[0].Description != "Adds two numbers." {
		t.Fatalf("add doc = %+v, want description %q", fn, "Adds two numbers.")
	}
}

func TestGenerateSource_RegenerationReplacesDocs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.GenerateSource(ctx, "src/app.js", []byte(`function one() {}`))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, err := svc.GenerateSource(ctx, "src/app.js", []byte(`function two() {}`))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Removed != first.DocsProduced {
		t.Errorf("Removed = %d, want %d", second.Removed, first.DocsProduced)
	}

	if got := svc.Store().SearchByName("one", 5); len(got) != 0 {
		t.Errorf("stale doc %q survived regeneration", got[0].Name)
	}
	if got := svc.Store().SearchByName("two", 5); len(got) != 1 {
		t.Errorf("new doc missing, got %d matches", len(got))
	}
}

func TestGenerateSource_ParseErrorReturnsError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateSource(context.Background(), "src/bad.js", []byte{0xff, 0xfe})
	if err == nil {
		t.Fatal("expected error for invalid content")
	}
}

func TestGenerateSource_PublishesEvent(t *testing.T) {
	svc := newTestService(t)
	ch := svc.Events().Subscribe()

	if _, err := svc.GenerateSource(context.Background(), "src/ev.js", []byte(`let x = 1;`)); err != nil {
		t.Fatalf("GenerateSource: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type != EventGenerated {
			t.Errorf("event type = %q, want %q", ev.Type, EventGenerated)
		}
		if ev.FilePath != "src/ev.js" {
			t.Errorf("event file = %q, want src/ev.js", ev.FilePath)
		}
		if ev.DocsProduced == 0 {
			t.Error("event DocsProduced = 0")
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestGenerateFile_UnsupportedExtension(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateFile(context.Background(), "/tmp/readme.txt")
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("err = %v, want ErrUnsupportedFile", err)
	}
}

func TestGenerateFile_ReadsFromDisk(t *testing.T) {
	svc := newTestService(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "widget.js")
	src := "/** A widget. */\nclass Widget {}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.GenerateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	if resp.FilePath != path {
		t.Errorf("FilePath = %q, want %q", resp.FilePath, path)
	}
	if got := svc.Store().SearchByName("Widget", 1); len(got) != 1 || got[0].Category != doc.CategoryModuleClass {
		t.Fatalf("Widget doc = %+v, want one ModuleClass", got)
	}
}

func TestGenerateProject_WalksTreeAndSkipsExcluded(t *testing.T) {
	svc := newTestService(t)

	root := t.TempDir()
	mustWrite := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("src/index.js", "function main() {}\n")
	mustWrite("src/util.mjs", "export function helper() {}\n")
	mustWrite("node_modules/dep/index.js", "function hidden() {}\n")
	mustWrite("README.md", "# not source\n")

	resp, err := svc.GenerateProject(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if resp.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", resp.FilesScanned)
	}
	if resp.FilesFailed != 0 {
		t.Errorf("FilesFailed = %d, errors: %v", resp.FilesFailed, resp.Errors)
	}
	if resp.DocsProduced == 0 {
		t.Error("DocsProduced = 0")
	}

	if got := svc.Store().SearchByName("hidden", 1); len(got) != 0 {
		t.Error("node_modules content was documented")
	}
	if got := svc.Store().SearchByName("helper", 1); len(got) != 1 {
		t.Error("util.mjs was not documented")
	}
}

func TestGenerateProject_SampleFixture(t *testing.T) {
	svc := newTestService(t)

	root, err := filepath.Abs("../../test/fixtures/sample-js-project")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.GenerateProject(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if resp.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2 (index.js, util.mjs)", resp.FilesScanned)
	}
	if resp.FilesFailed != 0 {
		t.Errorf("FilesFailed = %d, errors: %v", resp.FilesFailed, resp.Errors)
	}

	if got := svc.Store().SearchByName("Greeter", 5); len(got) == 0 {
		t.Error("Greeter class not documented")
	}
	if got := svc.Store().SearchByName("FALLBACK_NAME", 1); len(got) != 1 {
		t.Error("FALLBACK_NAME constant not documented")
	}
	if got := svc.Store().SearchByName("leftPad", 1); len(got) != 0 {
		t.Error("node_modules content was documented")
	}
}

func TestGenerateProject_RejectsRelativeRoot(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateProject(context.Background(), "relative/path", nil, nil)
	if !errors.Is(err, ErrRelativePath) {
		t.Fatalf("err = %v, want ErrRelativePath", err)
	}
}

func TestGenerateProject_RejectsTraversal(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateProject(context.Background(), "/tmp/../etc", nil, nil)
	if !errors.Is(err, ErrPathTraversal) {
		t.Fatalf("err = %v, want ErrPathTraversal", err)
	}
}

func TestGenerateProject_PerFileFailuresAreNotFatal(t *testing.T) {
	svc := newTestService(t)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ok.js"), []byte("let a = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bad.js"), []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.GenerateProject(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if resp.FilesScanned != 1 || resp.FilesFailed != 1 {
		t.Errorf("scanned/failed = %d/%d, want 1/1", resp.FilesScanned, resp.FilesFailed)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", resp.Errors)
	}
}

func TestDocsQuery_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GenerateSource(ctx, "a.js", []byte("function alpha() {}\nlet beta = 1;\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateSource(ctx, "b.js", []byte("function gamma() {}\n")); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Docs(DocsQuery{File: "a.js", Category: "ModuleFunction"})
	if err != nil {
		t.Fatalf("Docs: %v", err)
	}
	if resp.Count != 1 || resp.Docs[0].Name != "alpha" {
		t.Fatalf("Docs = %+v, want single alpha", resp.Docs)
	}

	if _, err := svc.Docs(DocsQuery{Category: "NotACategory"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GenerateSource(context.Background(), "s.js", []byte("function findAll() {}\n")); err != nil {
		t.Fatal(err)
	}

	resp := svc.Search("findAll", 0)
	if resp.Count != 1 || resp.Query != "findAll" {
		t.Fatalf("Search = %+v, want one hit", resp)
	}
}

func TestRemoveFile_RemovesAndPublishes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	gen, err := svc.GenerateSource(ctx, "gone.js", []byte("let x = 1;\n"))
	if err != nil {
		t.Fatal(err)
	}

	ch := svc.Events().Subscribe()
	resp := svc.RemoveFile("gone.js")
	if resp.Removed != gen.DocsProduced {
		t.Errorf("Removed = %d, want %d", resp.Removed, gen.DocsProduced)
	}

	select {
	case ev := <-ch:
		if ev.Type != EventRemoved || ev.Removed != resp.Removed {
			t.Errorf("event = %+v, want EventRemoved with Removed=%d", ev, resp.Removed)
		}
	case <-time.After(time.Second):
		t.Fatal("no removal event")
	}

	// Removing an unknown file is a no-op and publishes nothing.
	if again := svc.RemoveFile("gone.js"); again.Removed != 0 {
		t.Errorf("second removal = %d, want 0", again.Removed)
	}
}

func TestStats_Counts(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GenerateSource(context.Background(), "st.js", []byte("function f() {}\n")); err != nil {
		t.Fatal(err)
	}

	st := svc.Stats()
	if st.TotalDocs == 0 || st.FileCount != 1 {
		t.Errorf("Stats = %+v, want docs for one file", st)
	}
	if st.Persistent {
		t.Error("Persistent = true without badger")
	}
	if st.CategoryCounts[doc.CategoryModuleFunction.String()] != 1 {
		t.Errorf("ModuleFunction count = %d, want 1", st.CategoryCounts[doc.CategoryModuleFunction.String()])
	}
}

func TestSnapshotRestore_WithoutBadger(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Snapshot(context.Background()); !errors.Is(err, ErrPersistenceDisabled) {
		t.Errorf("Snapshot err = %v, want ErrPersistenceDisabled", err)
	}
	if _, err := svc.Restore(context.Background()); !errors.Is(err, ErrPersistenceDisabled) {
		t.Errorf("Restore err = %v, want ErrPersistenceDisabled", err)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	db, err := badgerstore.Open(badgerstore.InMemoryConfig())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	src := NewService(DefaultServiceConfig()).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithBadger(db)
	if !src.Persistent() {
		t.Fatal("Persistent = false with badger attached")
	}

	if _, err := src.GenerateSource(ctx, "persist.js", []byte("/** Kept. */\nfunction keep() {}\n")); err != nil {
		t.Fatal(err)
	}

	snap, err := src.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.DocsPersisted != src.Store().Len() {
		t.Errorf("DocsPersisted = %d, want %d", snap.DocsPersisted, src.Store().Len())
	}

	dst := NewService(DefaultServiceConfig()).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithBadger(db)

	rest, err := dst.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if rest.DocsRestored != snap.DocsPersisted {
		t.Errorf("DocsRestored = %d, want %d", rest.DocsRestored, snap.DocsPersisted)
	}

	got := dst.Store().SearchByName("keep", 1)
	if len(got) != 1 || got[0].Description != "Kept." {
		t.Fatalf("restored doc = %+v", got)
	}
}
