// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for generation runs.
var (
	tracer = otel.Tracer("aleutian.docgen.generator")
	meter  = otel.Meter("aleutian.docgen.generator")
)

// Metrics for generation runs. Spans cover whole runs, not per-node work;
// a single file visits thousands of nodes and per-node spans would swamp
// the trace.
var (
	generateLatency metric.Float64Histogram
	generateTotal   metric.Int64Counter
	docsProduced    metric.Int64Counter
	exportsDeferred metric.Int64Counter
	nodesInvalid    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		generateLatency, err = meter.Float64Histogram(
			"docgen_generate_duration_seconds",
			metric.WithDescription("Duration of per-file doc generation runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		generateTotal, err = meter.Int64Counter(
			"docgen_generate_total",
			metric.WithDescription("Total number of doc generation runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		docsProduced, err = meter.Int64Counter(
			"docgen_docs_produced_total",
			metric.WithDescription("Total doc objects inserted by generation runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		exportsDeferred, err = meter.Int64Counter(
			"docgen_exports_deferred_total",
			metric.WithDescription("Export statements resolved by the second pass"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesInvalid, err = meter.Int64Counter(
			"docgen_invalid_nodes_total",
			metric.WithDescription("Nodes that failed per-node processing"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startGenerateSpan creates a span for one Generate call.
func startGenerateSpan(ctx context.Context, filePath, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Generator.Generate",
		trace.WithAttributes(
			attribute.String("docgen.file_path", filePath),
			attribute.String("docgen.run_id", runID),
		),
	)
}

// recordGenerate records metrics for one completed (or failed) run.
func recordGenerate(ctx context.Context, duration time.Duration, docs, deferred, invalid int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	opts := metric.WithAttributes(attribute.Bool("success", success))
	generateLatency.Record(ctx, duration.Seconds(), opts)
	generateTotal.Add(ctx, 1, opts)
	docsProduced.Add(ctx, int64(docs))
	exportsDeferred.Add(ctx, int64(deferred))
	nodesInvalid.Add(ctx, int64(invalid))
}
