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
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianDocs/services/docgen/config"
)

// RouteOptions controls optional route behavior.
type RouteOptions struct {
	// EnableWebsocket exposes GET /docs/events.
	EnableWebsocket bool

	// RateLimitRPS bounds mutating routes. Zero disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the burst allowance for mutating routes.
	RateLimitBurst int
}

// RouteOptionsFromYAML maps the loaded YAML configuration onto RouteOptions.
func RouteOptionsFromYAML(cfg *config.DocgenConfig) RouteOptions {
	if cfg == nil {
		return RouteOptions{EnableWebsocket: true}
	}
	return RouteOptions{
		EnableWebsocket: cfg.Server.EnableWebsocket,
		RateLimitRPS:    cfg.Server.RateLimitRPS,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	}
}

// RegisterRoutes registers all documentation service routes with the
// router group.
//
// Description:
//
//	Registers all /v1/docs/* endpoints with the given Gin router group.
//	Mutating routes share a token-bucket rate limiter when one is
//	configured; read routes are never limited.
//
// Generation Endpoints:
//
//	POST /v1/docs/generate - Document one file (inline source or disk)
//	POST /v1/docs/project - Document a whole project tree
//	DELETE /v1/docs/file - Remove a file's docs
//
// Query Endpoints:
//
//	GET /v1/docs - List docs by file/category/name
//	GET /v1/docs/:id - Get one doc by ID
//	GET /v1/docs/search - Ranked name search
//	GET /v1/docs/invalid - Constructs that failed processing
//	GET /v1/docs/events - Websocket doc change stream (optional)
//
// Persistence Endpoints:
//
//	POST /v1/snapshot - Persist the store to Badger
//	POST /v1/restore - Load the store from Badger
//
// Service Endpoints:
//
//	GET /v1/stats - Store statistics
//	GET /v1/health - Health check
//	GET /v1/ready - Readiness check
//
// Example:
//
//	service := docgen.NewService(docgen.DefaultServiceConfig())
//	handlers := docgen.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	docgen.RegisterRoutes(v1, handlers, docgen.RouteOptions{EnableWebsocket: true})
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers, opts RouteOptions) {
	var limited gin.HandlerFunc
	if opts.RateLimitRPS > 0 {
		limited = RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst)
	}

	docs := rg.Group("/docs")
	{
		// Generation
		docs.POST("/generate", withLimit(limited, h.HandleGenerate)...)
		docs.POST("/project", withLimit(limited, h.HandleGenerateProject)...)
		docs.DELETE("/file", withLimit(limited, h.HandleRemoveFile)...)

		// Queries
		docs.GET("", h.HandleListDocs)
		docs.GET("/search", h.HandleSearch)
		docs.GET("/invalid", h.HandleInvalid)
		docs.GET("/:id", h.HandleGetDoc)

		if opts.EnableWebsocket {
			docs.GET("/events", h.HandleEvents)
		}
	}

	// Persistence
	rg.POST("/snapshot", withLimit(limited, h.HandleSnapshot)...)
	rg.POST("/restore", withLimit(limited, h.HandleRestore)...)

	// Service
	rg.GET("/stats", h.HandleStats)
	rg.GET("/health", h.HandleHealth)
	rg.GET("/ready", h.HandleReady)
}

// withLimit prepends the rate limiter to a handler chain when configured.
func withLimit(limiter gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limiter, handler}
}

// RateLimitMiddleware bounds request rate with a shared token bucket.
//
// Description:
//
//	All routes sharing the returned middleware draw from one bucket, so
//	the limit applies to the mutating surface as a whole rather than per
//	endpoint. Rejected requests get 429 with a Retry-After hint.
//
// Thread Safety: Safe for concurrent use.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
