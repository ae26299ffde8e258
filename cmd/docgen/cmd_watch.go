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
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDocs/services/docgen"
)

func runWatch(_ *cobra.Command, args []string) {
	root, err := filepath.Abs(args[0])
	if err != nil {
		log.Fatalf("Error resolving path: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if !info.IsDir() {
		log.Fatalf("Error: watch expects a directory, got %s", root)
	}

	svc := newCLIService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Full scan first so the store reflects the tree before we start
	// reacting to changes.
	resp, err := svc.GenerateProject(ctx, root, extensionsArg, excludeArg)
	if err != nil {
		log.Fatalf("Error scanning project: %v", err)
	}
	fmt.Printf("Watching %s (%d files, %d docs)\n", root, resp.FilesScanned, resp.DocsProduced)

	watcher, err := docgen.NewWatcher(svc, root, docgen.WatchOptions{
		Debounce: time.Duration(debounceMS) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("Error creating watcher: %v", err)
	}
	if err := watcher.Start(ctx); err != nil {
		log.Fatalf("Error starting watcher: %v", err)
	}

	// Echo regeneration events as they land.
	events := svc.Events().Subscribe()
	go func() {
		for ev := range events {
			switch ev.Type {
			case docgen.EventGenerated:
				fmt.Printf("  regenerated %s (%d docs)\n", ev.FilePath, ev.DocsProduced)
			case docgen.EventRemoved:
				fmt.Printf("  removed %s (%d docs)\n", ev.FilePath, ev.Removed)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nStopping watcher")
	watcher.Stop()
	svc.Events().Unsubscribe(events)
	cancel()

	if outDir != "" {
		persistDocs(context.Background(), svc)
	}
}
