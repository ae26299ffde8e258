// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command docserve starts the Aleutian Docs API server.
//
// Aleutian Docs generates JSDoc-style documentation objects from
// JavaScript source:
//   - Two-pass generation (tree walk, then export reconciliation)
//   - In-memory doc store with optional BadgerDB persistence
//   - Live regeneration events over WebSocket
//
// Usage:
//
//	go run ./cmd/docserve
//	go run ./cmd/docserve -addr :9090
//	go run ./cmd/docserve -config /etc/aleutian/docgen.yaml
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8182/v1/health
//
//	# Generate docs for inline source
//	curl -X POST http://localhost:8182/v1/docs/generate \
//	  -H "Content-Type: application/json" \
//	  -d '{"file_path": "app.js", "source": "export function run() {}"}'
//
//	# Generate docs for a whole project
//	curl -X POST http://localhost:8182/v1/docs/project \
//	  -H "Content-Type: application/json" \
//	  -d '{"project_root": "/path/to/project"}'
//
//	# Query stored docs
//	curl 'http://localhost:8182/v1/docs?category=class'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianDocs/services/docgen"
	"github.com/AleutianAI/AleutianDocs/services/docgen/config"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb/badgerstore"
	"github.com/AleutianAI/AleutianDocs/services/docgen/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (defaults to the embedded config)")
	addr := flag.String("addr", "", "Listen address override (e.g. :9090)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Load configuration
	var cfg *config.DocgenConfig
	var err error
	if *configPath != "" {
		cfg, err = config.LoadDocgenConfigFile(ctx, *configPath)
	} else {
		cfg, err = config.GetDocgenConfig(ctx)
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	listenAddr := cfg.Server.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	// Initialize telemetry (tracing + metrics). Exporters come from the
	// OTEL_* environment variables; "none" disables them.
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		slog.Warn("Telemetry init failed, continuing without exporters",
			slog.String("error", err.Error()))
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// Open the snapshot store. Persistence is optional: if badger cannot
	// open we keep serving from memory.
	var store *badgerstore.DB
	if cfg.Badger.Path != "" || cfg.Badger.InMemory {
		store, err = badgerstore.Open(badgerstore.Config{
			Path:           cfg.Badger.Path,
			InMemory:       cfg.Badger.InMemory,
			SyncWrites:     cfg.Badger.SyncWrites,
			Logger:         logger,
			GCInterval:     time.Duration(cfg.Badger.GCIntervalSeconds) * time.Second,
			GCDiscardRatio: cfg.Badger.GCDiscardRatio,
		})
		if err != nil {
			slog.Warn("BadgerDB unavailable, snapshots disabled",
				slog.String("path", cfg.Badger.Path),
				slog.String("error", err.Error()))
			store = nil
		}
	}

	// Create the service
	svc := docgen.NewService(docgen.ServiceConfigFromYAML(cfg)).WithLogger(logger)
	if store != nil {
		svc = svc.WithBadger(store)
		restored, err := svc.Restore(ctx)
		if err != nil {
			slog.Warn("Snapshot restore failed, starting empty",
				slog.String("error", err.Error()))
		} else if restored.DocsRestored > 0 {
			slog.Info("Restored docs from snapshot", slog.Int("docs", restored.DocsRestored))
		}
	}

	handlers := docgen.NewHandlers(svc)

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-docs"))
	if *debug {
		router.Use(gin.Logger())
	}
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	v1 := router.Group("/v1")
	docgen.RegisterRoutes(v1, handlers, docgen.RouteOptionsFromYAML(cfg))

	printBanner(listenAddr, store != nil)

	srv := &http.Server{
		Addr:        listenAddr,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
	}

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Docs server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	// Start server
	slog.Info("Starting Aleutian Docs server", slog.String("address", listenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// In-flight requests have drained; persist what we have before exit.
	if svc.Persistent() {
		snapCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if _, err := svc.Snapshot(snapCtx); err != nil {
			slog.Warn("Shutdown snapshot failed", slog.String("error", err.Error()))
		} else {
			slog.Info("Docs snapshotted to disk")
		}
		cancel()
	}
	if err := svc.Close(); err != nil {
		slog.Warn("Service close error", slog.String("error", err.Error()))
	}
	if err := shutdownTelemetry(context.Background()); err != nil {
		slog.Warn("Telemetry shutdown error", slog.String("error", err.Error()))
	}
}

func printBanner(addr string, persistent bool) {
	persistStatus := "DISABLED (in-memory only)"
	if persistent {
		persistStatus = "ENABLED (BadgerDB snapshots)"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                      ALEUTIAN DOCS SERVER                         ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  JSDoc-style documentation objects from JavaScript source.        ║
║  Persistence: %-50s   ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost%s/v1/health                         │  ║
║  │                                                             │  ║
║  │ # Generate docs for inline source                           │  ║
║  │ curl -X POST http://localhost%s/v1/docs/generate \        │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"file_path":"a.js","source":"export class A {}"}'    │  ║
║  │                                                             │  ║
║  │ # Scan a project                                            │  ║
║  │ curl -X POST http://localhost%s/v1/docs/project \         │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"project_root": "/your/project/path"}'               │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Docs: /docs/generate, /docs/project, /docs, /docs/:id        ║
║  ├── Query: /docs/search, /docs/invalid, /stats                   ║
║  ├── Persist: /snapshot, /restore                                 ║
║  └── Live: /docs/events (WebSocket), /metrics                     ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, persistStatus, addr, addr, addr)
}
