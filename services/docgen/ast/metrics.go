// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for parse operations.
var (
	tracer = otel.Tracer("aleutian.docgen.ast")
	meter  = otel.Meter("aleutian.docgen.ast")
)

// Metrics for parse operations.
var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	parseBytes   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"docgen_parse_duration_seconds",
			metric.WithDescription("Duration of source parse operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"docgen_parse_total",
			metric.WithDescription("Total number of parsed files"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseBytes, err = meter.Int64Histogram(
			"docgen_parse_bytes",
			metric.WithDescription("Size of parsed sources"),
			metric.WithUnit("By"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startParseSpan creates a span for one Parse call.
func startParseSpan(ctx context.Context, filePath string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Parser.Parse",
		trace.WithAttributes(
			attribute.String("parse.file_path", filePath),
			attribute.Int("parse.bytes", size),
		),
	)
}

// recordParseMetrics records metrics for one Parse call.
func recordParseMetrics(ctx context.Context, duration time.Duration, size int, attrs ...attribute.KeyValue) {
	if err := initMetrics(); err != nil {
		return
	}

	opts := metric.WithAttributes(attrs...)
	parseLatency.Record(ctx, duration.Seconds(), opts)
	parseTotal.Add(ctx, 1, opts)
	parseBytes.Record(ctx, int64(size), opts)
}
