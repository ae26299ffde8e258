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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the service surface. Generator internals report
// through OTel meters; these cover the scan, watch and event plumbing
// around them.
var (
	scanFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgen_scan_files_total",
		Help: "Files processed by project scans, by outcome",
	}, []string{"status"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docgen_scan_duration_seconds",
		Help:    "Wall-clock duration of project scans",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})

	watchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgen_watch_events_total",
		Help: "Filesystem watcher events acted on, by operation",
	}, []string{"op"})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docgen_ws_clients",
		Help: "Connected websocket event subscribers",
	})

	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgen_events_dropped_total",
		Help: "Doc events dropped because a subscriber was too slow",
	})
)

func recordScanFile(ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	scanFilesTotal.WithLabelValues(status).Inc()
}

func recordScanDuration(d time.Duration) {
	scanDuration.Observe(d.Seconds())
}

func recordWatchEvent(op string) {
	watchEventsTotal.WithLabelValues(op).Inc()
}
