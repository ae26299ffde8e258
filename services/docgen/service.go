// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docgen provides the documentation generation HTTP service.
//
// The service exposes endpoints for:
//   - Generating doc objects from single files or whole project trees
//   - Querying, searching and removing docs
//   - Persisting the doc store to Badger and restoring it on startup
//   - Streaming doc change events over a websocket
package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/config"
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb/badgerstore"
	"github.com/AleutianAI/AleutianDocs/services/docgen/generator"
)

// ServiceConfig configures the documentation service.
type ServiceConfig struct {
	// MaxProjectFiles is the maximum number of files documented per scan.
	// Default: 10000
	MaxProjectFiles int

	// MaxProjectSize is the maximum total size of scanned files in bytes.
	// Default: 100MB
	MaxProjectSize int64

	// MaxScanDuration is the maximum time allowed for a project scan.
	// Default: 5m
	MaxScanDuration time.Duration

	// MaxFileSize is the per-file size cutoff in bytes.
	// Default: 1MB
	MaxFileSize int64

	// ScanConcurrency is the number of files documented in parallel.
	// Default: 8
	ScanConcurrency int

	// Extensions lists the documentable source extensions.
	// Default: .js, .mjs, .cjs
	Extensions []string

	// ExcludeDirs lists directory names skipped during scans.
	// Default: node_modules, .git, dist, build, coverage
	ExcludeDirs []string

	// AllowedRoots is an optional list of allowed project root prefixes.
	// If empty, all paths are allowed. Security feature.
	AllowedRoots []string

	// ErrorPolicy selects how malformed constructs propagate.
	// Default: PolicyLog
	ErrorPolicy generator.ErrorPolicy

	// MaxDocs caps the doc store capacity.
	// Default: 1000000
	MaxDocs int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxProjectFiles: 10000,
		MaxProjectSize:  100 * 1024 * 1024,
		MaxScanDuration: 5 * time.Minute,
		MaxFileSize:     config.DefaultMaxFileSizeBytes,
		ScanConcurrency: config.DefaultScanConcurrency,
		Extensions:      []string{".js", ".mjs", ".cjs"},
		ExcludeDirs:     []string{"node_modules", ".git", "dist", "build", "coverage"},
		ErrorPolicy:     generator.PolicyLog,
		MaxDocs:         config.DefaultMaxDocs,
	}
}

// ServiceConfigFromYAML maps the loaded YAML configuration onto a
// ServiceConfig, falling back to defaults for anything the YAML does not
// cover.
func ServiceConfigFromYAML(cfg *config.DocgenConfig) ServiceConfig {
	sc := DefaultServiceConfig()
	if cfg == nil {
		return sc
	}
	sc.MaxFileSize = cfg.Scan.MaxFileSizeBytes
	sc.ScanConcurrency = cfg.Scan.Concurrency
	sc.Extensions = append([]string(nil), cfg.Scan.Extensions...)
	sc.ExcludeDirs = append([]string(nil), cfg.Scan.ExcludeDirs...)
	sc.MaxDocs = cfg.Store.MaxDocs
	if cfg.Generator.ErrorPolicy == "throw" {
		sc.ErrorPolicy = generator.PolicyThrow
	}
	return sc
}

// Service is the documentation generation service.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Generation runs for the same file
//	serialize on a per-file lock; runs for distinct files proceed in
//	parallel.
type Service struct {
	config  ServiceConfig
	logger  *slog.Logger
	parser  *ast.Parser
	store   *docdb.Store
	gen     *generator.Generator
	invalid *generator.InvalidLog
	events  *EventHub

	// badger is the optional persistence layer. Nil means snapshot and
	// restore return ErrPersistenceDisabled.
	badger *badgerstore.DB

	scanLocks sync.Map // projectRoot -> *sync.Mutex
	fileLocks sync.Map // filePath -> *sync.Mutex
}

// NewService creates a documentation service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	invalid := generator.NewInvalidLog()
	logger := slog.Default()

	return &Service{
		config:  cfg,
		logger:  logger,
		parser:  ast.NewParser(ast.WithMaxFileSize(int(cfg.MaxFileSize))),
		store:   docdb.NewStore(docdb.WithMaxDocs(cfg.MaxDocs)),
		invalid: invalid,
		gen: generator.NewGenerator(
			generator.WithLogger(logger),
			generator.WithErrorPolicy(cfg.ErrorPolicy),
			generator.WithInvalidLog(invalid),
		),
		events: NewEventHub(),
	}
}

// WithLogger sets the structured logger. Returns the service for chaining.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
		s.gen = generator.NewGenerator(
			generator.WithLogger(logger),
			generator.WithErrorPolicy(s.config.ErrorPolicy),
			generator.WithInvalidLog(s.invalid),
		)
	}
	return s
}

// WithBadger attaches the persistence layer. Returns the service for
// chaining.
func (s *Service) WithBadger(db *badgerstore.DB) *Service {
	s.badger = db
	return s
}

// Store exposes the underlying doc store for read access.
func (s *Service) Store() *docdb.Store {
	return s.store
}

// Events exposes the doc event hub for subscribers.
func (s *Service) Events() *EventHub {
	return s.events
}

// Persistent reports whether a Badger layer is attached.
func (s *Service) Persistent() bool {
	return s.badger != nil
}

// GenerateSource documents inline source content under the given path.
//
// Description:
//
//	Parses the content, drops any docs from a previous run of the same
//	file, and runs the generator. The file doc is stamped with the
//	content hash so callers can skip unchanged files.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing.
//	filePath - Module identifier and doc partition key.
//	content - Raw source bytes.
//
// Outputs:
//
//	*GenerateResponse - Run summary.
//	error - Parse failures, generation failures, or store errors.
//
// Thread Safety: Safe for concurrent use; same-file calls serialize.
func (s *Service) GenerateSource(ctx context.Context, filePath string, content []byte) (*GenerateResponse, error) {
	start := time.Now()

	lock := s.fileLock(filePath)
	lock.Lock()
	defer lock.Unlock()

	parsed, err := s.parser.Parse(ctx, content, filePath)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	removed := s.store.RemoveByFile(filePath)

	res, err := s.gen.Generate(ctx, parsed.Program, filePath, s.store)
	if err != nil {
		// Leave the store without this file's docs rather than with a
		// partial, inconsistent set from a failed run.
		s.store.RemoveByFile(filePath)
		return nil, err
	}

	// Stamp the file doc for change detection on later runs.
	if fileDoc, err := s.store.ByID(res.FileDocID); err == nil {
		fileDoc.ContentHash = parsed.Hash
	}

	s.events.Publish(DocEvent{
		Type:         EventGenerated,
		FilePath:     filePath,
		DocsProduced: res.DocsProduced,
		Removed:      removed,
		TimestampMs:  time.Now().UnixMilli(),
	})

	return &GenerateResponse{
		RunID:        res.RunID,
		FilePath:     filePath,
		FileDocID:    res.FileDocID,
		ModuleID:     res.ModuleID,
		DocsProduced: res.DocsProduced,
		Deferred:     res.Deferred,
		InvalidNodes: res.InvalidNodes,
		Removed:      removed,
		ContentHash:  parsed.Hash,
		ParseErrors:  parsed.Errors,
		DurationMs:   time.Since(start).Milliseconds(),
	}, nil
}

// GenerateFile reads a source file from disk and documents it.
//
// Outputs:
//
//	*GenerateResponse - Run summary.
//	error - ErrUnsupportedFile for unknown extensions, ast.ErrFileTooLarge
//	for oversized files, or any GenerateSource error.
func (s *Service) GenerateFile(ctx context.Context, path string) (*GenerateResponse, error) {
	if !s.isSourceFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if s.config.MaxFileSize > 0 && info.Size() > s.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ast.ErrFileTooLarge, path, info.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return s.GenerateSource(ctx, path, content)
}

// GenerateProject documents every source file under a project root.
//
// Description:
//
//	Walks the tree collecting documentable files, then documents them
//	concurrently. Per-file failures are collected, not fatal; the scan
//	aborts only on context cancellation or when the project exceeds the
//	configured limits.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	projectRoot - Absolute path to the project root.
//	extensions - Source extensions (default: config).
//	excludeDirs - Directory names to skip (default: config).
//
// Outputs:
//
//	*ProjectScanResponse - Scan summary with per-file errors.
//	error - Validation failures, limit violations or cancellation.
//
// Errors:
//
//	ErrRelativePath - Project root is not absolute.
//	ErrPathTraversal - Project root contains .. sequences.
//	ErrProjectTooLarge - Project exceeds configured limits.
//	ErrScanInProgress - Another scan is running for this root.
func (s *Service) GenerateProject(ctx context.Context, projectRoot string, extensions, excludeDirs []string) (*ProjectScanResponse, error) {
	if err := s.validateProjectRoot(projectRoot); err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = s.config.Extensions
	}
	if len(excludeDirs) == 0 {
		excludeDirs = s.config.ExcludeDirs
	}

	lock := s.scanLock(projectRoot)
	if !lock.TryLock() {
		return nil, ErrScanInProgress
	}
	defer lock.Unlock()

	if s.config.MaxScanDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.MaxScanDuration)
		defer cancel()
	}

	start := time.Now()
	scanID := uuid.NewString()
	logger := s.logger.With(
		slog.String("scan_id", scanID),
		slog.String("project_root", projectRoot),
	)

	files, err := collectSourceFiles(ctx, projectRoot, scanLimits{
		extensions:  extensions,
		excludeDirs: excludeDirs,
		maxFileSize: s.config.MaxFileSize,
		maxFiles:    s.config.MaxProjectFiles,
		maxTotal:    s.config.MaxProjectSize,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("project scan started", slog.Int("files", len(files)))

	resp := &ProjectScanResponse{
		ScanID:      scanID,
		ProjectRoot: projectRoot,
	}
	var respMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ScanConcurrency)

	for _, path := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			res, err := s.GenerateFile(gCtx, path)

			respMu.Lock()
			defer respMu.Unlock()
			if err != nil {
				resp.FilesFailed++
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", path, err))
				recordScanFile(false)
				return nil
			}
			resp.FilesScanned++
			resp.DocsProduced += res.DocsProduced
			recordScanFile(true)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("project scan aborted: %w", err)
	}

	resp.DurationMs = time.Since(start).Milliseconds()
	recordScanDuration(time.Since(start))

	logger.Info("project scan finished",
		slog.Int("files_scanned", resp.FilesScanned),
		slog.Int("files_failed", resp.FilesFailed),
		slog.Int("docs_produced", resp.DocsProduced),
		slog.Int64("duration_ms", resp.DurationMs),
	)

	return resp, nil
}

// Docs queries the store by file, category and name.
func (s *Service) Docs(q DocsQuery) (*DocsResponse, error) {
	query := docdb.Query{
		Name:     q.Name,
		FilePath: q.File,
	}
	if q.Category != "" {
		cat, err := doc.ParseCategory(q.Category)
		if err != nil {
			return nil, err
		}
		query.Category = cat
	}

	docs := s.store.Find(query)
	return &DocsResponse{Count: len(docs), Docs: docs}, nil
}

// DocByID returns a single doc by its ID.
func (s *Service) DocByID(id int64) (*doc.Doc, error) {
	return s.store.ByID(id)
}

// Search ranks docs by name match quality.
func (s *Service) Search(query string, limit int) *SearchResponse {
	if limit <= 0 {
		limit = 20
	}
	docs := s.store.SearchByName(query, limit)
	return &SearchResponse{Query: query, Count: len(docs), Docs: docs}
}

// RemoveFile drops all docs generated from a file.
func (s *Service) RemoveFile(filePath string) *RemoveFileResponse {
	lock := s.fileLock(filePath)
	lock.Lock()
	defer lock.Unlock()

	removed := s.store.RemoveByFile(filePath)
	if removed > 0 {
		s.events.Publish(DocEvent{
			Type:        EventRemoved,
			FilePath:    filePath,
			Removed:     removed,
			TimestampMs: time.Now().UnixMilli(),
		})
	}
	return &RemoveFileResponse{FilePath: filePath, Removed: removed}
}

// Stats summarizes the store and failure log.
func (s *Service) Stats() *StatsResponse {
	st := s.store.Stats()
	return &StatsResponse{
		TotalDocs:      st.TotalDocs,
		FileCount:      st.FileCount,
		CategoryCounts: st.CategoryCounts,
		InvalidNodes:   s.invalid.Len(),
		Persistent:     s.badger != nil,
	}
}

// InvalidNodes returns the recorded construct failures.
func (s *Service) InvalidNodes() *InvalidNodesResponse {
	entries := s.invalid.Entries()
	return &InvalidNodesResponse{Count: len(entries), Entries: entries}
}

// Snapshot persists the doc store to Badger.
func (s *Service) Snapshot(ctx context.Context) (*SnapshotResponse, error) {
	if s.badger == nil {
		return nil, ErrPersistenceDisabled
	}

	start := time.Now()
	if err := badgerstore.Snapshot(ctx, s.badger, s.store); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return &SnapshotResponse{
		DocsPersisted: s.store.Len(),
		DurationMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Restore loads the doc store from the last Badger snapshot.
//
// The store should be empty when calling this; restored docs keep their
// snapshot IDs and the ID counter advances past the highest one.
func (s *Service) Restore(ctx context.Context) (*RestoreResponse, error) {
	if s.badger == nil {
		return nil, ErrPersistenceDisabled
	}

	start := time.Now()
	n, err := badgerstore.Restore(ctx, s.badger, s.store)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	s.logger.Info("doc store restored",
		slog.Int("docs", n),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &RestoreResponse{
		DocsRestored: n,
		DurationMs:   time.Since(start).Milliseconds(),
	}, nil
}

// Close releases the persistence layer and event hub.
func (s *Service) Close() error {
	s.events.Close()
	if s.badger != nil {
		return s.badger.Close()
	}
	return nil
}

// validateProjectRoot validates the project root path.
func (s *Service) validateProjectRoot(projectRoot string) error {
	if !filepath.IsAbs(projectRoot) {
		return ErrRelativePath
	}
	if strings.Contains(projectRoot, "..") {
		return ErrPathTraversal
	}

	resolved, err := filepath.EvalSymlinks(projectRoot)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if len(s.config.AllowedRoots) > 0 {
		allowed := false
		for _, root := range s.config.AllowedRoots {
			if strings.HasPrefix(resolved, root) {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrPathTraversal
		}
	}

	return nil
}

// isSourceFile reports whether the path has a documentable extension.
func (s *Service) isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range s.config.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// fileLock returns the per-file generation lock.
func (s *Service) fileLock(filePath string) *sync.Mutex {
	lock, _ := s.fileLocks.LoadOrStore(filePath, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// scanLock returns the per-root scan lock.
func (s *Service) scanLock(projectRoot string) *sync.Mutex {
	lock, _ := s.scanLocks.LoadOrStore(projectRoot, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
