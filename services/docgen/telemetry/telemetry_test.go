// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "aleutian-docs" {
		t.Errorf("ServiceName = %q, want aleutian-docs", cfg.ServiceName)
	}
	if cfg.TraceExporter == "" || cfg.MetricExporter == "" {
		t.Errorf("exporters not defaulted: %+v", cfg)
	}
	if !cfg.OTLPInsecure {
		t.Error("OTLPInsecure should default to true for development")
	}
}

func TestInit_NilContext(t *testing.T) {
	if _, err := Init(nil, DefaultConfig()); !errors.Is(err, ErrNilContext) {
		t.Fatalf("err = %v, want ErrNilContext", err)
	}
}

func TestInit_UnknownExporters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "carrier-pigeon"

	if _, err := Init(context.Background(), cfg); !errors.Is(err, ErrUnknownExporter) {
		t.Fatalf("trace exporter err = %v, want ErrUnknownExporter", err)
	}

	cfg = DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "carrier-pigeon"

	if _, err := Init(context.Background(), cfg); !errors.Is(err, ErrUnknownExporter) {
		t.Fatalf("metric exporter err = %v, want ErrUnknownExporter", err)
	}
}

func TestInit_DisabledExporters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestLoggerWithTrace_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	LoggerWithTrace(context.Background(), base).Info("plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("trace_id added without an active span: %s", buf.String())
	}

	// Nil context and nil logger both fall back without panicking.
	LoggerWithTrace(nil, base).Info("still plain")
	LoggerWithTrace(context.Background(), nil).Info("default logger")
}

func TestLoggerWithTrace_ActiveSpan(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	LoggerWithTrace(ctx, base).Info("traced")

	out := buf.String()
	if !strings.Contains(out, "trace_id="+traceID.String()) {
		t.Errorf("trace_id missing from %q", out)
	}
	if !strings.Contains(out, "span_id="+spanID.String()) {
		t.Errorf("span_id missing from %q", out)
	}
}

func TestLoggerWithFile(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	LoggerWithFile(context.Background(), base, "src/app.js").Info("scoped")
	if !strings.Contains(buf.String(), "file_path=src/app.js") {
		t.Errorf("file_path missing from %q", buf.String())
	}
}

func TestMetricsHandler_AfterPrometheusInit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { shutdown(context.Background()) })

	if MetricsHandler() == nil {
		t.Fatal("MetricsHandler returned nil after prometheus init")
	}
}
