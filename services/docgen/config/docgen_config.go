// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the documentation service configuration from
// embedded or external YAML.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxYAMLFileSize is the maximum allowed config file size (1MB).
	// Prevents memory issues from misdirected file paths.
	MaxYAMLFileSize = 1024 * 1024

	// MaxScanConcurrency caps the per-project parse worker count.
	MaxScanConcurrency = 64
)

// =============================================================================
// Embedded Default Configuration
// =============================================================================

//go:embed docgen_config.yaml
var defaultDocgenConfigYAML []byte

// =============================================================================
// OTel Tracer
// =============================================================================

var docgenConfigTracer = otel.Tracer("aleutian.docgen.config")

// =============================================================================
// Configuration Types
// =============================================================================

// DocgenConfig is the root configuration for the documentation service.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type DocgenConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Badger    BadgerConfig    `yaml:"badger"`
	Generator GeneratorConfig `yaml:"generator"`
	Scan      ScanConfig      `yaml:"scan"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	// ListenAddr is the host:port the HTTP server binds.
	ListenAddr string `yaml:"listen_addr"`

	// ReadTimeoutSeconds bounds how long a request body read may take.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`

	// ShutdownTimeoutSeconds bounds graceful shutdown on SIGTERM.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`

	// EnableWebsocket exposes the /api/v1/docs/events stream.
	EnableWebsocket bool `yaml:"enable_websocket"`

	// RateLimitRPS is the sustained request rate allowed on mutating
	// routes. Zero disables rate limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// RateLimitBurst is the burst allowance on mutating routes.
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

// StoreConfig controls the in-memory doc store.
type StoreConfig struct {
	// MaxDocs caps the number of docs held in memory.
	MaxDocs int `yaml:"max_docs"`
}

// BadgerConfig controls the persistence layer.
type BadgerConfig struct {
	// Path is the on-disk database directory. Ignored when InMemory.
	Path string `yaml:"path"`

	// InMemory keeps the whole database in RAM. Snapshots do not
	// survive restarts.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites fsyncs every write batch.
	SyncWrites bool `yaml:"sync_writes"`

	// GCIntervalSeconds is the value-log GC cadence. Zero disables GC.
	GCIntervalSeconds int `yaml:"gc_interval_seconds"`

	// GCDiscardRatio is the rewrite threshold for value-log GC.
	GCDiscardRatio float64 `yaml:"gc_discard_ratio"`
}

// GeneratorConfig controls doc generation behavior.
type GeneratorConfig struct {
	// ErrorPolicy is "log" (record and skip malformed constructs) or
	// "throw" (first malformed construct aborts the file).
	ErrorPolicy string `yaml:"error_policy"`
}

// ScanConfig controls project directory scanning.
type ScanConfig struct {
	// Extensions lists the file extensions treated as source modules.
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names skipped during the walk.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxFileSizeBytes skips source files larger than this.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`

	// Concurrency is the number of files parsed and documented in
	// parallel during a project scan.
	Concurrency int `yaml:"concurrency"`
}

// WatchConfig controls the filesystem watcher.
type WatchConfig struct {
	// DebounceMS coalesces rapid write events for the same file.
	DebounceMS int `yaml:"debounce_ms"`
}

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultListenAddr is the default HTTP bind address.
	DefaultListenAddr = ":8182"

	// DefaultReadTimeoutSeconds is the default request read timeout.
	DefaultReadTimeoutSeconds = 15

	// DefaultShutdownTimeoutSeconds is the default graceful-shutdown bound.
	DefaultShutdownTimeoutSeconds = 10

	// DefaultMaxDocs is the default in-memory doc capacity.
	DefaultMaxDocs = 1_000_000

	// DefaultGCIntervalSeconds is the default Badger GC cadence.
	DefaultGCIntervalSeconds = 300

	// DefaultGCDiscardRatio is the default Badger GC rewrite threshold.
	DefaultGCDiscardRatio = 0.5

	// DefaultScanConcurrency is the default project-scan worker count.
	DefaultScanConcurrency = 8

	// DefaultMaxFileSizeBytes is the default per-file size cutoff (1MB).
	DefaultMaxFileSizeBytes = 1024 * 1024

	// DefaultDebounceMS is the default watcher debounce window.
	DefaultDebounceMS = 300
)

// defaultExtensions are the source extensions documented when the config
// names none.
var defaultExtensions = []string{".js", ".mjs", ".cjs"}

// =============================================================================
// Singleton Configuration
// =============================================================================

var (
	docgenConfigMu      sync.RWMutex
	docgenConfigOnce    sync.Once
	cachedDocgenConfig  *DocgenConfig
	docgenConfigLoadErr error
)

// GetDocgenConfig returns the cached service configuration.
//
// Description:
//
//	Loads the embedded defaults on first call and caches for subsequent
//	calls. Uses sync.Once for thread-safe initialization.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*DocgenConfig - The loaded configuration. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetDocgenConfig(ctx context.Context) (*DocgenConfig, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetDocgenConfig: ctx must not be nil")
	}

	docgenConfigMu.RLock()
	if cachedDocgenConfig != nil || docgenConfigLoadErr != nil {
		cfg, err := cachedDocgenConfig, docgenConfigLoadErr
		docgenConfigMu.RUnlock()
		return cfg, err
	}
	docgenConfigMu.RUnlock()

	docgenConfigMu.Lock()
	defer docgenConfigMu.Unlock()

	if cachedDocgenConfig != nil || docgenConfigLoadErr != nil {
		return cachedDocgenConfig, docgenConfigLoadErr
	}

	docgenConfigOnce.Do(func() {
		cachedDocgenConfig, docgenConfigLoadErr = LoadDocgenConfig(ctx, defaultDocgenConfigYAML)
	})

	return cachedDocgenConfig, docgenConfigLoadErr
}

// ResetDocgenConfig resets the cached config for testing.
//
// Thread Safety: Safe for concurrent use.
func ResetDocgenConfig() {
	docgenConfigMu.Lock()
	defer docgenConfigMu.Unlock()
	cachedDocgenConfig = nil
	docgenConfigLoadErr = nil
	docgenConfigOnce = sync.Once{}
}

// LoadDocgenConfigFile loads the configuration from an external YAML file,
// replacing the cached singleton.
//
// Inputs:
//
//	ctx - Context for tracing.
//	path - Filesystem path to a YAML config file.
//
// Outputs:
//
//	*DocgenConfig - The validated configuration.
//	error - Non-nil if reading, parsing or validation fails.
func LoadDocgenConfigFile(ctx context.Context, path string) (*DocgenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadDocgenConfigFile: reading %s: %w", path, err)
	}

	cfg, err := LoadDocgenConfig(ctx, data)
	if err != nil {
		return nil, err
	}

	docgenConfigMu.Lock()
	cachedDocgenConfig = cfg
	docgenConfigLoadErr = nil
	docgenConfigMu.Unlock()

	return cfg, nil
}

// LoadDocgenConfig loads and validates a DocgenConfig from YAML bytes.
//
// Description:
//
//	Parses the YAML, applies defaults for missing fields, and validates
//	cross-field consistency.
//
// Inputs:
//
//	ctx - Context for tracing.
//	data - Raw YAML bytes to parse.
//
// Outputs:
//
//	*DocgenConfig - The validated configuration.
//	error - Non-nil if parsing or validation fails.
func LoadDocgenConfig(ctx context.Context, data []byte) (*DocgenConfig, error) {
	_, span := docgenConfigTracer.Start(ctx, "config.LoadDocgenConfig")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("LoadDocgenConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadDocgenConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg DocgenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadDocgenConfig: parsing YAML: %w", err)
	}

	applyDocgenDefaults(&cfg)

	if err := validateDocgenConfig(&cfg); err != nil {
		return nil, fmt.Errorf("LoadDocgenConfig: validation: %w", err)
	}

	span.SetAttributes(
		attribute.String("listen_addr", cfg.Server.ListenAddr),
		attribute.Int("max_docs", cfg.Store.MaxDocs),
		attribute.Bool("badger_in_memory", cfg.Badger.InMemory),
		attribute.String("error_policy", cfg.Generator.ErrorPolicy),
		attribute.Int("scan_concurrency", cfg.Scan.Concurrency),
	)

	slog.Info("docgen config loaded",
		slog.String("listen_addr", cfg.Server.ListenAddr),
		slog.Int("max_docs", cfg.Store.MaxDocs),
		slog.Bool("badger_in_memory", cfg.Badger.InMemory),
		slog.String("error_policy", cfg.Generator.ErrorPolicy),
	)

	return &cfg, nil
}

// applyDocgenDefaults fills zero-valued fields with defaults.
func applyDocgenDefaults(cfg *DocgenConfig) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = DefaultReadTimeoutSeconds
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = DefaultShutdownTimeoutSeconds
	}
	if cfg.Store.MaxDocs <= 0 {
		cfg.Store.MaxDocs = DefaultMaxDocs
	}
	if cfg.Badger.GCIntervalSeconds < 0 {
		cfg.Badger.GCIntervalSeconds = DefaultGCIntervalSeconds
	}
	if cfg.Badger.GCDiscardRatio <= 0 {
		cfg.Badger.GCDiscardRatio = DefaultGCDiscardRatio
	}
	if cfg.Generator.ErrorPolicy == "" {
		cfg.Generator.ErrorPolicy = "log"
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = append([]string(nil), defaultExtensions...)
	}
	if cfg.Scan.MaxFileSizeBytes <= 0 {
		cfg.Scan.MaxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if cfg.Scan.Concurrency <= 0 {
		cfg.Scan.Concurrency = DefaultScanConcurrency
	}
	if cfg.Scan.Concurrency > MaxScanConcurrency {
		cfg.Scan.Concurrency = MaxScanConcurrency
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = DefaultDebounceMS
	}
}

// validateDocgenConfig checks cross-field consistency.
func validateDocgenConfig(cfg *DocgenConfig) error {
	switch cfg.Generator.ErrorPolicy {
	case "log", "throw":
	default:
		return fmt.Errorf("generator.error_policy must be 'log' or 'throw', got %q", cfg.Generator.ErrorPolicy)
	}

	if cfg.Server.RateLimitRPS < 0 {
		return fmt.Errorf("server.rate_limit_rps must not be negative, got %v", cfg.Server.RateLimitRPS)
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("server.rate_limit_burst must be positive when rate limiting is enabled")
	}

	if !cfg.Badger.InMemory && cfg.Badger.Path == "" {
		return fmt.Errorf("badger.path must not be empty for on-disk mode")
	}
	if cfg.Badger.GCDiscardRatio > 1 {
		return fmt.Errorf("badger.gc_discard_ratio must be in (0, 1], got %v", cfg.Badger.GCDiscardRatio)
	}

	for i, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("scan.extensions[%d]: must start with a dot, got %q", i, ext)
		}
	}

	return nil
}
