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
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDocs/services/docgen"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb/badgerstore"
	"github.com/AleutianAI/AleutianDocs/services/docgen/generator"
)

func runGenerate(_ *cobra.Command, args []string) {
	path, err := filepath.Abs(args[0])
	if err != nil {
		log.Fatalf("Error resolving path: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	svc := newCLIService()
	ctx := context.Background()

	if info.IsDir() {
		resp, err := svc.GenerateProject(ctx, path, extensionsArg, excludeArg)
		if err != nil {
			log.Fatalf("Error scanning project: %v", err)
		}
		if stdoutIsTerminal() && !jsonOutput {
			fmt.Printf("Scanned %s\n", path)
			fmt.Printf("  files: %d documented, %d failed\n", resp.FilesScanned, resp.FilesFailed)
			fmt.Printf("  docs:  %d\n", resp.DocsProduced)
			fmt.Printf("  took:  %dms\n", resp.DurationMs)
			for _, msg := range resp.Errors {
				fmt.Printf("  error: %s\n", msg)
			}
		}
	} else {
		res, err := svc.GenerateFile(ctx, path)
		if err != nil {
			log.Fatalf("Error generating docs: %v", err)
		}
		if stdoutIsTerminal() && !jsonOutput {
			fmt.Printf("Generated %d docs for %s (%d deferred exports, %d invalid nodes)\n",
				res.DocsProduced, path, res.Deferred, res.InvalidNodes)
		}
	}

	if jsonOutput || !stdoutIsTerminal() {
		printDocsJSON(svc)
	}

	if outDir != "" {
		persistDocs(ctx, svc)
	}
}

// newCLIService builds an in-memory service from the command flags.
func newCLIService() *docgen.Service {
	cfg := docgen.DefaultServiceConfig()
	if len(extensionsArg) > 0 {
		cfg.Extensions = extensionsArg
	}
	if len(excludeArg) > 0 {
		cfg.ExcludeDirs = excludeArg
	}
	if policyFlag == "throw" {
		cfg.ErrorPolicy = generator.PolicyThrow
	}
	return docgen.NewService(cfg).WithLogger(slog.Default())
}

// printDocsJSON writes every stored doc to stdout, ordered by ID.
func printDocsJSON(svc *docgen.Service) {
	docs := svc.Store().All()
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		log.Fatalf("Error encoding docs: %v", err)
	}
}

// persistDocs snapshots the in-memory store into a BadgerDB directory.
func persistDocs(ctx context.Context, svc *docgen.Service) {
	db, err := badgerstore.Open(badgerstore.Config{
		Path:       outDir,
		SyncWrites: true,
	})
	if err != nil {
		log.Fatalf("Error opening doc store at %s: %v", outDir, err)
	}
	defer db.Close()

	if err := badgerstore.Snapshot(ctx, db, svc.Store()); err != nil {
		log.Fatalf("Error persisting docs: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Persisted %d docs to %s\n", svc.Store().Len(), outDir)
}
