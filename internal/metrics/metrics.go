// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package metrics provides Prometheus instrumentation for the events API:
// engine query latency and errors per dataset, dry-run compatibility probes,
// and HTTP request metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics. The dataset label is "discover" or "metricsEnhanced".
	EngineQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_query_duration_seconds",
			Help:    "Duration of events-engine queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset", "referrer"},
	)

	EngineQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_query_errors_total",
			Help: "Total number of events-engine query failures",
		},
		[]string{"dataset", "kind"},
	)

	// DryRunProbes counts non-authoritative metrics-enhanced executions used
	// to gauge query compatibility. Outcome is "compatible", "incompatible"
	// or "error"; probe results never reach clients.
	DryRunProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_dry_run_probes_total",
			Help: "Total number of metrics-enhanced dry-run compatibility probes",
		},
		[]string{"outcome"},
	)

	// UserModifiedQueries counts events queries where the client reported
	// whether the search input was hand-edited. The modified label is "true"
	// or "false"; off-list values are never recorded.
	UserModifiedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_user_modified_queries_total",
			Help: "Total number of events queries carrying the user_modified diagnostic",
		},
		[]string{"modified"},
	)

	// API metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordEngineQuery records the latency of a completed engine query.
func RecordEngineQuery(dataset, referrer string, duration time.Duration) {
	EngineQueryDuration.WithLabelValues(dataset, referrer).Observe(duration.Seconds())
}

// RecordEngineError records a classified engine failure.
func RecordEngineError(dataset, kind string) {
	EngineQueryErrors.WithLabelValues(dataset, kind).Inc()
}

// RecordDryRunProbe records the outcome of a dry-run compatibility probe.
func RecordDryRunProbe(outcome string) {
	DryRunProbes.WithLabelValues(outcome).Inc()
}

// RecordUserModifiedQuery records the client-reported user_modified
// diagnostic. Callers must pass "true" or "false" only.
func RecordUserModifiedQuery(modified string) {
	UserModifiedQueries.WithLabelValues(modified).Inc()
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
