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
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
	"github.com/AleutianAI/AleutianDocs/services/docgen/generator"
)

// ServiceVersion is the documentation service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the documentation service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleGenerate handles POST /v1/docs/generate.
//
// Description:
//
//	Documents a single file. When the request carries inline source, it
//	is used verbatim; otherwise the file is read from disk. Docs from a
//	previous run of the same file are replaced.
//
// Request Body:
//
//	GenerateRequest
//
// Response:
//
//	200 OK: GenerateResponse
//	400 Bad Request: Validation error, unsupported or oversized file
//	404 Not Found: File does not exist on disk
//	422 Unprocessable Entity: Source could not be parsed or documented
//	500 Internal Server Error: Store failure
func (h *Handlers) HandleGenerate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGenerate")

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Generating docs", "file_path", req.FilePath, "inline", req.Source != "")

	var (
		resp *GenerateResponse
		err  error
	)
	if req.Source != "" {
		resp, err = h.svc.GenerateSource(c.Request.Context(), req.FilePath, []byte(req.Source))
	} else {
		resp, err = h.svc.GenerateFile(c.Request.Context(), req.FilePath)
	}
	if err != nil {
		status, code := generateErrorStatus(err)
		logger.Error("Generation failed", "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	logger.Info("Docs generated",
		"run_id", resp.RunID,
		"docs_produced", resp.DocsProduced,
		"invalid_nodes", resp.InvalidNodes,
		"duration_ms", resp.DurationMs)

	c.JSON(http.StatusOK, resp)
}

// generateErrorStatus maps a generation failure to an HTTP status and
// error code.
func generateErrorStatus(err error) (int, string) {
	var nodeErr *generator.NodeError

	switch {
	case errors.Is(err, ErrUnsupportedFile):
		return http.StatusBadRequest, "UNSUPPORTED_FILE"
	case errors.Is(err, ast.ErrFileTooLarge):
		return http.StatusBadRequest, "FILE_TOO_LARGE"
	case errors.Is(err, ast.ErrInvalidContent):
		return http.StatusBadRequest, "INVALID_CONTENT"
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "FILE_NOT_FOUND"
	case errors.Is(err, ast.ErrParseFailed), ast.IsParseError(err):
		return http.StatusUnprocessableEntity, "PARSE_FAILED"
	case errors.As(err, &nodeErr):
		return http.StatusUnprocessableEntity, "INVALID_CODE"
	case errors.Is(err, docdb.ErrMaxDocsExceeded):
		return http.StatusInsufficientStorage, "STORE_FULL"
	default:
		return http.StatusInternalServerError, "GENERATE_FAILED"
	}
}

// HandleGenerateProject handles POST /v1/docs/project.
//
// Description:
//
//	Scans a project tree and documents every source file in it.
//
// Request Body:
//
//	ProjectScanRequest
//
// Response:
//
//	200 OK: ProjectScanResponse
//	400 Bad Request: Validation error or project too large
//	409 Conflict: A scan for this root is already running
//	504 Gateway Timeout: Scan exceeded the configured duration limit
func (h *Handlers) HandleGenerateProject(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGenerateProject")

	var req ProjectScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Scanning project", "project_root", req.ProjectRoot)

	resp, err := h.svc.GenerateProject(c.Request.Context(), req.ProjectRoot, req.Extensions, req.ExcludeDirs)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "SCAN_FAILED"

		switch {
		case errors.Is(err, ErrRelativePath):
			statusCode = http.StatusBadRequest
			errCode = "INVALID_PATH"
		case errors.Is(err, ErrPathTraversal):
			statusCode = http.StatusBadRequest
			errCode = "PATH_TRAVERSAL"
		case errors.Is(err, ErrProjectTooLarge):
			statusCode = http.StatusBadRequest
			errCode = "PROJECT_TOO_LARGE"
		case errors.Is(err, ErrScanInProgress):
			statusCode = http.StatusConflict
			errCode = "SCAN_IN_PROGRESS"
		case errors.Is(err, context.DeadlineExceeded):
			statusCode = http.StatusGatewayTimeout
			errCode = "SCAN_TIMEOUT"
		}

		logger.Error("Project scan failed", "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Project scanned",
		"scan_id", resp.ScanID,
		"files_scanned", resp.FilesScanned,
		"files_failed", resp.FilesFailed,
		"docs_produced", resp.DocsProduced,
		"duration_ms", resp.DurationMs)

	c.JSON(http.StatusOK, resp)
}

// HandleListDocs handles GET /v1/docs.
//
// Query Parameters:
//
//	file: Filter by source file path (optional)
//	category: Filter by category name (optional)
//	name: Filter by exact construct name (optional)
//
// Response:
//
//	200 OK: DocsResponse
//	400 Bad Request: Unknown category name
func (h *Handlers) HandleListDocs(c *gin.Context) {
	var q DocsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid query parameters",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.svc.Docs(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CATEGORY",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleGetDoc handles GET /v1/docs/:id.
//
// Response:
//
//	200 OK: doc.Doc
//	400 Bad Request: Non-numeric ID
//	404 Not Found: No doc with that ID
func (h *Handlers) HandleGetDoc(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Doc ID must be an integer",
			Code:  "INVALID_ID",
		})
		return
	}

	d, err := h.svc.DocByID(id)
	if err != nil {
		if errors.Is(err, docdb.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  "DOC_NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "LOOKUP_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, d)
}

// HandleSearch handles GET /v1/docs/search.
//
// Query Parameters:
//
//	q: Name to search for (required)
//	limit: Maximum results (optional, default 20)
//
// Response:
//
//	200 OK: SearchResponse
//	400 Bad Request: Missing query
func (h *Handlers) HandleSearch(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Query parameter 'q' is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.JSON(http.StatusOK, h.svc.Search(q.Q, q.Limit))
}

// HandleRemoveFile handles DELETE /v1/docs/file.
//
// Query Parameters:
//
//	path: Source file whose docs to remove (required)
//
// Response:
//
//	200 OK: RemoveFileResponse
//	400 Bad Request: Missing path
func (h *Handlers) HandleRemoveFile(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRemoveFile")

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Query parameter 'path' is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp := h.svc.RemoveFile(path)
	logger.Info("Docs removed", "file_path", path, "removed", resp.Removed)
	c.JSON(http.StatusOK, resp)
}

// HandleInvalid handles GET /v1/docs/invalid.
//
// Response:
//
//	200 OK: InvalidNodesResponse
func (h *Handlers) HandleInvalid(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.InvalidNodes())
}

// HandleStats handles GET /v1/stats.
//
// Response:
//
//	200 OK: StatsResponse
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// HandleSnapshot handles POST /v1/snapshot.
//
// Response:
//
//	200 OK: SnapshotResponse
//	503 Service Unavailable: No persistence layer attached
func (h *Handlers) HandleSnapshot(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSnapshot")

	resp, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrPersistenceDisabled) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: err.Error(),
				Code:  "PERSISTENCE_DISABLED",
			})
			return
		}
		logger.Error("Snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "SNAPSHOT_FAILED",
		})
		return
	}

	logger.Info("Store snapshotted", "docs_persisted", resp.DocsPersisted)
	c.JSON(http.StatusOK, resp)
}

// HandleRestore handles POST /v1/restore.
//
// Response:
//
//	200 OK: RestoreResponse
//	503 Service Unavailable: No persistence layer attached
func (h *Handlers) HandleRestore(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRestore")

	resp, err := h.svc.Restore(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrPersistenceDisabled) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: err.Error(),
				Code:  "PERSISTENCE_DISABLED",
			})
			return
		}
		logger.Error("Restore failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "RESTORE_FAILED",
		})
		return
	}

	logger.Info("Store restored", "docs_restored", resp.DocsRestored)
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/health.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/ready.
//
// Response:
//
//	200 OK: ReadyResponse
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:    true,
		DocCount: h.svc.Store().Len(),
		BadgerOK: h.svc.Persistent(),
	})
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
