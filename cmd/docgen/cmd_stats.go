// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb/badgerstore"
)

func runStats(_ *cobra.Command, args []string) {
	if dbPath == "" {
		log.Fatalf("Error: --db is required (path to a persisted doc store)")
	}

	db, err := badgerstore.Open(badgerstore.Config{
		Path:       dbPath,
		SyncWrites: false,
	})
	if err != nil {
		log.Fatalf("Error opening doc store at %s: %v", dbPath, err)
	}
	defer db.Close()

	store := docdb.NewStore()
	restored, err := badgerstore.Restore(context.Background(), db, store)
	if err != nil {
		log.Fatalf("Error reading doc store: %v", err)
	}

	stats := store.Stats()

	if !stdoutIsTerminal() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			log.Fatalf("Error encoding stats: %v", err)
		}
		return
	}

	fmt.Printf("Doc store: %s\n", dbPath)
	fmt.Printf("  docs:  %d (restored %d)\n", stats.TotalDocs, restored)
	fmt.Printf("  files: %d\n", stats.FileCount)

	categories := make([]string, 0, len(stats.CategoryCounts))
	for cat := range stats.CategoryCounts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		fmt.Printf("  %-14s %d\n", cat+":", stats.CategoryCounts[cat])
	}
}
