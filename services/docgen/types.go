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
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/generator"
)

// GenerateRequest is the request body for POST /v1/docs/generate.
type GenerateRequest struct {
	// FilePath identifies the module. Required. When Source is empty it
	// is also the on-disk path to read.
	FilePath string `json:"file_path" binding:"required"`

	// Source is inline file content. When set, nothing is read from disk
	// and FilePath serves only as the module identifier.
	Source string `json:"source"`
}

// GenerateResponse is the response for POST /v1/docs/generate.
type GenerateResponse struct {
	// RunID is the unique identifier of this generation run.
	RunID string `json:"run_id"`

	// FilePath is the module the docs were generated from.
	FilePath string `json:"file_path"`

	// FileDocID is the ID of the file doc anchoring the run.
	FileDocID int64 `json:"file_doc_id"`

	// ModuleID is the ID of the module doc.
	ModuleID int64 `json:"module_id"`

	// DocsProduced is the number of docs inserted.
	DocsProduced int `json:"docs_produced"`

	// Deferred is the number of export statements resolved in the
	// second pass.
	Deferred int `json:"deferred"`

	// InvalidNodes is the number of constructs that failed processing.
	InvalidNodes int `json:"invalid_nodes"`

	// Removed is the number of docs replaced from a previous run of the
	// same file.
	Removed int `json:"removed"`

	// ContentHash is the SHA-256 of the source content.
	ContentHash string `json:"content_hash"`

	// ParseErrors holds syntax errors tree-sitter recovered from.
	ParseErrors []string `json:"parse_errors,omitempty"`

	// DurationMs is the end-to-end parse + generate time.
	DurationMs int64 `json:"duration_ms"`
}

// ProjectScanRequest is the request body for POST /v1/docs/project.
type ProjectScanRequest struct {
	// ProjectRoot is the absolute path to the project root. Required.
	ProjectRoot string `json:"project_root" binding:"required"`

	// Extensions overrides the configured source extensions.
	Extensions []string `json:"extensions"`

	// ExcludeDirs overrides the configured directory exclusions.
	ExcludeDirs []string `json:"exclude_dirs"`
}

// ProjectScanResponse is the response for POST /v1/docs/project.
type ProjectScanResponse struct {
	// ScanID is the unique identifier of this scan.
	ScanID string `json:"scan_id"`

	// ProjectRoot is the scanned root.
	ProjectRoot string `json:"project_root"`

	// FilesScanned is the number of files documented successfully.
	FilesScanned int `json:"files_scanned"`

	// FilesFailed is the number of files that could not be documented.
	FilesFailed int `json:"files_failed"`

	// DocsProduced is the total docs inserted across all files.
	DocsProduced int `json:"docs_produced"`

	// DurationMs is the wall-clock scan time.
	DurationMs int64 `json:"duration_ms"`

	// Errors contains non-fatal per-file failures.
	Errors []string `json:"errors,omitempty"`
}

// DocsQuery is the query params for GET /v1/docs.
type DocsQuery struct {
	// File filters by source file path.
	File string `form:"file"`

	// Category filters by doc category name (e.g. "ModuleFunction").
	Category string `form:"category"`

	// Name filters by exact construct name.
	Name string `form:"name"`
}

// DocsResponse is the response for GET /v1/docs.
type DocsResponse struct {
	// Count is the number of docs returned.
	Count int `json:"count"`

	// Docs is the matching docs ordered by ID.
	Docs []*doc.Doc `json:"docs"`
}

// SearchQuery is the query params for GET /v1/docs/search.
type SearchQuery struct {
	// Q is the name to search for. Required.
	Q string `form:"q" binding:"required"`

	// Limit is the maximum number of results. Default: 20.
	Limit int `form:"limit"`
}

// SearchResponse is the response for GET /v1/docs/search.
type SearchResponse struct {
	// Query is the search term that was used.
	Query string `json:"query"`

	// Count is the number of docs returned.
	Count int `json:"count"`

	// Docs is the ranked results: exact matches, then prefix, then
	// substring.
	Docs []*doc.Doc `json:"docs"`
}

// RemoveFileResponse is the response for DELETE /v1/docs/file.
type RemoveFileResponse struct {
	// FilePath is the file whose docs were removed.
	FilePath string `json:"file_path"`

	// Removed is the number of docs removed.
	Removed int `json:"removed"`
}

// StatsResponse is the response for GET /v1/stats.
type StatsResponse struct {
	// TotalDocs is the number of docs in the store.
	TotalDocs int `json:"total_docs"`

	// FileCount is the number of distinct source files documented.
	FileCount int `json:"file_count"`

	// CategoryCounts breaks docs down by category name.
	CategoryCounts map[string]int `json:"category_counts"`

	// InvalidNodes is the number of recorded construct failures.
	InvalidNodes int `json:"invalid_nodes"`

	// Persistent reports whether a Badger snapshot layer is attached.
	Persistent bool `json:"persistent"`
}

// InvalidNodesResponse is the response for GET /v1/docs/invalid.
type InvalidNodesResponse struct {
	// Count is the number of entries.
	Count int `json:"count"`

	// Entries lists constructs that failed processing, oldest first.
	Entries []generator.InvalidNode `json:"entries"`
}

// SnapshotResponse is the response for POST /v1/snapshot.
type SnapshotResponse struct {
	// DocsPersisted is the number of docs written to Badger.
	DocsPersisted int `json:"docs_persisted"`

	// DurationMs is the snapshot time.
	DurationMs int64 `json:"duration_ms"`
}

// RestoreResponse is the response for POST /v1/restore.
type RestoreResponse struct {
	// DocsRestored is the number of docs loaded from Badger.
	DocsRestored int `json:"docs_restored"`

	// DurationMs is the restore time.
	DurationMs int64 `json:"duration_ms"`
}

// HealthResponse is the response for GET /v1/health.
type HealthResponse struct {
	// Status is "healthy" when the service is running.
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/ready.
type ReadyResponse struct {
	// Ready is true once the service can accept generation requests.
	Ready bool `json:"ready"`

	// DocCount is the number of docs currently in the store.
	DocCount int `json:"doc_count"`

	// BadgerOK is true if the persistence layer is attached.
	BadgerOK bool `json:"badger_ok"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}

// Doc event types pushed over the websocket stream.
const (
	// EventGenerated is emitted after a file's docs are (re)generated.
	EventGenerated = "generated"

	// EventRemoved is emitted after a file's docs are removed.
	EventRemoved = "removed"
)

// DocEvent is one entry on the /v1/docs/events stream.
type DocEvent struct {
	// Type is EventGenerated or EventRemoved.
	Type string `json:"type"`

	// FilePath is the source file the event concerns.
	FilePath string `json:"file_path"`

	// DocsProduced is set for EventGenerated.
	DocsProduced int `json:"docs_produced,omitempty"`

	// Removed is the number of docs dropped by this event.
	Removed int `json:"removed,omitempty"`

	// TimestampMs is the event time in Unix milliseconds.
	TimestampMs int64 `json:"timestamp_ms"`
}
