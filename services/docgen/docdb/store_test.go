// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docdb

import (
	"errors"
	"sync"
	"testing"

	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
)

func newDoc(name, filePath string, cat doc.Category) *doc.Doc {
	return &doc.Doc{
		Category: cat,
		Name:     name,
		Longname: doc.ModuleLongname(filePath, name),
		FilePath: filePath,
	}
}

func TestInsert_AssignsMonotonicIDs(t *testing.T) {
	store := NewStore()
	a := newDoc("a", "a.js", doc.CategoryModuleVariable)
	b := newDoc("b", "a.js", doc.CategoryModuleVariable)

	if err := store.Insert(a); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert(b); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if a.ID == 0 || b.ID == 0 {
		t.Fatal("expected IDs to be assigned")
	}
	if b.ID <= a.ID {
		t.Errorf("expected increasing IDs, got %d then %d", a.ID, b.ID)
	}
}

func TestInsert_RejectsInvalid(t *testing.T) {
	store := NewStore()
	err := store.Insert(&doc.Doc{Category: doc.CategoryModuleVariable})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *doc.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected *doc.ValidationError, got %T", err)
	}
	if store.Len() != 0 {
		t.Errorf("invalid doc must not be stored, Len = %d", store.Len())
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	store := NewStore()
	a := newDoc("a", "a.js", doc.CategoryModuleVariable)
	if err := store.Insert(a); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	dup := newDoc("dup", "a.js", doc.CategoryModuleVariable)
	dup.ID = a.ID
	if err := store.Insert(dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestInsert_MaxDocs(t *testing.T) {
	store := NewStore(WithMaxDocs(1))
	if err := store.Insert(newDoc("a", "a.js", doc.CategoryModuleVariable)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	err := store.Insert(newDoc("b", "a.js", doc.CategoryModuleVariable))
	if !errors.Is(err, ErrMaxDocsExceeded) {
		t.Errorf("expected ErrMaxDocsExceeded, got %v", err)
	}
}

func TestInsertBatch_AllOrNothing(t *testing.T) {
	store := NewStore()
	batch := []*doc.Doc{
		newDoc("ok", "a.js", doc.CategoryModuleVariable),
		{Category: doc.CategoryModuleVariable, FilePath: "a.js"}, // missing name
	}
	err := store.InsertBatch(batch)
	if err == nil {
		t.Fatal("expected batch error")
	}
	var berr *BatchError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BatchError, got %T", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed batch must insert nothing, Len = %d", store.Len())
	}
}

func TestFind_ReturnsLiveReferences(t *testing.T) {
	store := NewStore()
	d := newDoc("Widget", "w.js", doc.CategoryModuleClass)
	if err := store.Insert(d); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	found := store.Find(Query{Name: "Widget"})
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}

	// Mutations through the returned reference must be visible on the
	// next lookup; the export reconciler edits stored docs in place.
	found[0].Export = true
	found[0].ImportStyle = "Widget"

	again := store.FindOne(Query{Name: "Widget"})
	if again == nil {
		t.Fatal("expected to find Widget again")
	}
	if !again.Export || again.ImportStyle != "Widget" {
		t.Error("in-place mutation was not visible through the store")
	}
}

func TestFind_CombinedFilters(t *testing.T) {
	store := NewStore()
	docs := []*doc.Doc{
		newDoc("a", "one.js", doc.CategoryModuleVariable),
		newDoc("a", "two.js", doc.CategoryModuleVariable),
		newDoc("b", "one.js", doc.CategoryModuleFunction),
	}
	for _, d := range docs {
		if err := store.Insert(d); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	if got := store.Find(Query{Name: "a"}); len(got) != 2 {
		t.Errorf("name filter: expected 2, got %d", len(got))
	}
	if got := store.Find(Query{FilePath: "one.js"}); len(got) != 2 {
		t.Errorf("file filter: expected 2, got %d", len(got))
	}
	if got := store.Find(Query{Name: "a", FilePath: "one.js"}); len(got) != 1 {
		t.Errorf("combined filter: expected 1, got %d", len(got))
	}
	if got := store.Find(Query{Category: doc.CategoryModuleFunction}); len(got) != 1 || got[0].Name != "b" {
		t.Errorf("category filter: unexpected result %v", got)
	}
	if got := store.Find(Query{Name: "missing"}); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestFindOne_LowestID(t *testing.T) {
	store := NewStore()
	first := newDoc("x", "a.js", doc.CategoryModuleVariable)
	second := newDoc("x", "b.js", doc.CategoryModuleVariable)
	if err := store.Insert(first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert(second); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got := store.FindOne(Query{Name: "x"})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != first.ID {
		t.Errorf("expected earliest doc (ID %d), got ID %d", first.ID, got.ID)
	}
}

func TestByID(t *testing.T) {
	store := NewStore()
	d := newDoc("x", "a.js", doc.CategoryModuleVariable)
	if err := store.Insert(d); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	got, err := store.ByID(d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "x" {
		t.Errorf("unexpected doc: %+v", got)
	}
	if _, err := store.ByID(d.ID + 1000); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchByName_Ranking(t *testing.T) {
	store := NewStore()
	for _, name := range []string{"parseTags", "parse", "reparse"} {
		if err := store.Insert(newDoc(name, "a.js", doc.CategoryModuleFunction)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got := store.SearchByName("parse", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	if got[0].Name != "parse" {
		t.Errorf("exact match should rank first, got %q", got[0].Name)
	}
	if got[1].Name != "parseTags" {
		t.Errorf("prefix match should rank second, got %q", got[1].Name)
	}
	if got[2].Name != "reparse" {
		t.Errorf("substring match should rank last, got %q", got[2].Name)
	}

	if limited := store.SearchByName("parse", 1); len(limited) != 1 {
		t.Errorf("limit should cap results, got %d", len(limited))
	}
	if none := store.SearchByName("", 10); none != nil {
		t.Errorf("empty query should return nothing, got %v", none)
	}
}

func TestRemoveByFile(t *testing.T) {
	store := NewStore()
	for _, d := range []*doc.Doc{
		newDoc("a", "keep.js", doc.CategoryModuleVariable),
		newDoc("b", "drop.js", doc.CategoryModuleVariable),
		newDoc("c", "drop.js", doc.CategoryModuleFunction),
	} {
		if err := store.Insert(d); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	if removed := store.RemoveByFile("drop.js"); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 doc left, got %d", store.Len())
	}
	if got := store.Find(Query{FilePath: "drop.js"}); len(got) != 0 {
		t.Errorf("removed docs still findable: %v", got)
	}
	if got := store.Find(Query{Name: "b"}); len(got) != 0 {
		t.Errorf("name index not cleaned: %v", got)
	}
	if removed := store.RemoveByFile("missing.js"); removed != 0 {
		t.Errorf("expected 0 removed for unknown file, got %d", removed)
	}
}

func TestClear_DoesNotReuseIDs(t *testing.T) {
	store := NewStore()
	a := newDoc("a", "a.js", doc.CategoryModuleVariable)
	if err := store.Insert(a); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Clear()
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}

	b := newDoc("b", "a.js", doc.CategoryModuleVariable)
	if err := store.Insert(b); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if b.ID <= a.ID {
		t.Errorf("IDs must keep advancing across Clear, got %d after %d", b.ID, a.ID)
	}
}

func TestStats(t *testing.T) {
	store := NewStore()
	for _, d := range []*doc.Doc{
		newDoc("a", "a.js", doc.CategoryModuleVariable),
		newDoc("b", "a.js", doc.CategoryModuleVariable),
		newDoc("C", "b.js", doc.CategoryModuleClass),
	} {
		if err := store.Insert(d); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	stats := store.Stats()
	if stats.TotalDocs != 3 {
		t.Errorf("expected 3 docs, got %d", stats.TotalDocs)
	}
	if stats.FileCount != 2 {
		t.Errorf("expected 2 files, got %d", stats.FileCount)
	}
	if stats.CategoryCounts["ModuleVariable"] != 2 {
		t.Errorf("unexpected category counts: %v", stats.CategoryCounts)
	}
}

func TestNextID_ConcurrentUniqueness(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 200

	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*perGoroutine)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, NextID())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d unique IDs, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestAdvanceIDTo(t *testing.T) {
	target := NextID() + 100
	AdvanceIDTo(target)
	if next := NextID(); next <= target {
		t.Errorf("expected ID above %d after advance, got %d", target, next)
	}
	// Advancing backwards is a no-op.
	AdvanceIDTo(1)
	if next := NextID(); next <= target {
		t.Errorf("backwards advance must not rewind, got %d", next)
	}
}
