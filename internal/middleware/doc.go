// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package middleware provides chi-compatible HTTP middleware for request
tracking and instrumentation.

Key Components:

  - RequestID: accepts or generates X-Request-ID and stores it in the logging context
  - RequestLogger: one zerolog line per request, level by status class
  - PrometheusMetrics: request totals, latency and in-flight gauge by route pattern
  - PerformanceMonitor: sliding window of request latencies with percentiles

Every component has the func(http.Handler) http.Handler shape and is
installed with r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logging.WithComponent("http")))
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)

Route labels come from chi's matched pattern ("/api/v1/sessions/{id}/run"),
so metrics and stats stay bounded however many sessions exist.
*/
package middleware
