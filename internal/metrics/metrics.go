// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query error kinds used as the "kind" label.
const (
	ErrorKindConnectivity = "connectivity"
	ErrorKindQuery        = "query"
)

var (
	// Warehouse Metrics
	WarehouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mixtape_warehouse_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	WarehouseQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_warehouse_query_errors_total",
			Help: "Total number of failed warehouse queries",
		},
		[]string{"operation", "kind"},
	)

	WarehousePreflightFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_warehouse_preflight_failures_total",
			Help: "Total number of failed connectivity preflight checks",
		},
		[]string{"stage"}, // "resolve", "dial"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mixtape_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_cache_evictions_total",
			Help: "Total number of expired or displaced cache entries",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mixtape_cache_entries",
			Help: "Current number of cache entries",
		},
		[]string{"cache"},
	)

	// Recommendation Metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_recommendations_generated_total",
			Help: "Total number of computed (non-cached) recommendation lists",
		},
		[]string{"model"},
	)

	PopularityStrategyUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_popularity_strategy_used_total",
			Help: "Popularity retrieval strategy that produced the result",
		},
		[]string{"strategy"},
	)

	SeenTracksFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mixtape_seen_tracks_filtered_total",
			Help: "Rows removed by the exclusion pass after scoring",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixtape_sessions_active",
			Help: "Current number of recommendation sessions",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixtape_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixtape_api_active_requests",
			Help: "Number of API requests in flight",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mixtape_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordWarehouseQuery observes a query's duration and, when kind is not
// empty, counts it as an error of that kind.
func RecordWarehouseQuery(operation string, duration time.Duration, kind string) {
	WarehouseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if kind != "" {
		WarehouseQueryErrors.WithLabelValues(operation, kind).Inc()
	}
}

// RecordAPIRequest records a finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
