// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// docdb_dump inspects a persisted documentation store.
//
// The doc store persists generated documentation objects in BadgerDB
// between service restarts. This tool opens the store read-only and
// prints a human-readable summary: doc IDs, categories, longnames,
// source files, and per-category totals. With --json it emits the raw
// doc records as JSON lines instead, one per doc, for piping into jq.
//
// Usage:
//
//	docdb_dump [--path /path/to/docdb] [--json]
//
// If --path is not given, reads DOCDB_DIR from the environment, falling
// back to ./data/docdb (the server default).
//
// Exit codes:
//
//	0 — success (including "empty store" which prints a message and exits 0)
//	1 — error opening or reading the database
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	dgbadger "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
)

// docKeyPrefix must match badgerstore/snapshot.go exactly.
const docKeyPrefix = "doc:"

func main() {
	pathFlag := flag.String("path", "", "Path to the doc store BadgerDB directory (overrides DOCDB_DIR env var)")
	jsonFlag := flag.Bool("json", false, "Emit raw doc records as JSON lines")
	flag.Parse()

	dbPath := *pathFlag
	if dbPath == "" {
		dbPath = os.Getenv("DOCDB_DIR")
	}
	if dbPath == "" {
		dbPath = "./data/docdb"
	}

	if !*jsonFlag {
		fmt.Printf("Doc store path: %s\n", dbPath)
	}

	// Check existence before trying to open — gives a cleaner error message
	// than BadgerDB's "no such file or directory" buried in a long error.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Store directory does not exist. No snapshot has been written yet.")
		fmt.Println("Run the server with persistence enabled, or `docgen generate --out`, to create one.")
		os.Exit(0)
	}

	opts := dgbadger.DefaultOptions(dbPath).
		WithLogger(nil). // suppress BadgerDB internal logs
		WithReadOnly(true)

	db, err := dgbadger.Open(opts)
	if err != nil {
		fatalf("open BadgerDB at %s: %v", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	type entry struct {
		raw       []byte
		d         doc.Doc
		decodeErr error
	}

	var entries []entry
	var totalBytes int

	err = db.View(func(txn *dgbadger.Txn) error {
		iterOpts := dgbadger.DefaultIteratorOptions
		iterOpts.PrefetchValues = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		prefix := []byte(docKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e entry
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				e.decodeErr = fmt.Errorf("copy value: %w", err)
				entries = append(entries, e)
				continue
			}
			e.raw = raw
			totalBytes += len(raw)

			if err := json.Unmarshal(raw, &e.d); err != nil {
				e.decodeErr = fmt.Errorf("json decode: %w", err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		fatalf("read BadgerDB: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("\nNo docs found in the store.")
		fmt.Println("The snapshot prefix is empty; the server may not have snapshotted yet.")
		os.Exit(0)
	}

	if *jsonFlag {
		for _, e := range entries {
			if e.decodeErr != nil {
				fmt.Fprintf(os.Stderr, "docdb_dump: skipping undecodable record: %v\n", e.decodeErr)
				continue
			}
			os.Stdout.Write(e.raw)
			fmt.Println()
		}
		return
	}

	fmt.Printf("\nFound %d doc%s (%s):\n", len(entries), plural(len(entries), "", "s"), formatBytes(totalBytes))
	fmt.Println(strings.Repeat("─", 100))

	// Column width from the longest longname, capped so one long symbol
	// doesn't blow out the table.
	maxNameLen := len("Longname")
	for _, e := range entries {
		if n := len(displayName(&e.d)); n > maxNameLen && n <= 48 {
			maxNameLen = n
		}
	}

	fmt.Printf("%6s  %-14s  %-*s  %-6s  %s\n", "ID", "Category", maxNameLen, "Longname", "Export", "File")
	fmt.Printf("%s  %s  %s  %s  %s\n",
		strings.Repeat("─", 6),
		strings.Repeat("─", 14),
		strings.Repeat("─", maxNameLen),
		strings.Repeat("─", 6),
		strings.Repeat("─", 30),
	)

	categoryCounts := make(map[string]int)
	fileCounts := make(map[string]int)

	for _, e := range entries {
		if e.decodeErr != nil {
			fmt.Printf("%6s  DECODE ERROR: %v\n", "?", e.decodeErr)
			continue
		}
		d := e.d
		categoryCounts[d.Category.String()]++
		fileCounts[d.FilePath]++

		exported := ""
		if d.Export {
			exported = "yes"
		}
		fmt.Printf("%6d  %-14s  %-*s  %-6s  %s\n",
			d.ID, d.Category.String(), maxNameLen, truncate(displayName(&d), maxNameLen), exported, d.FilePath)
	}

	fmt.Printf("\n%s\n", strings.Repeat("─", 100))
	fmt.Printf("By category:\n")
	categories := make([]string, 0, len(categoryCounts))
	for cat := range categoryCounts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		fmt.Printf("  %-16s %d\n", cat+":", categoryCounts[cat])
	}
	fmt.Printf("Summary: %d docs across %d files, store path: %s\n",
		len(entries), len(fileCounts), dbPath)
}

// displayName prefers the longname; unnamed docs fall back to the name.
func displayName(d *doc.Doc) string {
	if d.Longname != "" {
		return d.Longname
	}
	return d.Name
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(n int) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB (%d bytes)", float64(n)/1024/1024, n)
	case n >= 1024:
		return fmt.Sprintf("%.1f KB (%d bytes)", float64(n)/1024, n)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// plural returns singular or plural suffix based on count.
func plural(n int, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}

// fatalf prints to stderr and exits 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "docdb_dump: "+format+"\n", args...)
	os.Exit(1)
}
