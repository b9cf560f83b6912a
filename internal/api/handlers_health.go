// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mixtape/internal/middleware"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/warehouse"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Sessions      int     `json:"sessions"`
}

// WarehouseHealth is the body of GET /health/warehouse.
type WarehouseHealth struct {
	Status    string `json:"status"`
	Driver    string `json:"driver"`
	Breaker   string `json:"breaker,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Engine    recommend.Stats            `json:"engine"`
	Sessions  int                        `json:"sessions"`
	Endpoints []middleware.EndpointStats `json:"endpoints"`
}

// Version is reported by the health endpoint; set at build time.
var Version = "dev"

// Health reports liveness without touching the warehouse.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Sessions:      h.sessions.Len(),
	}, start, false)
}

// HealthWarehouse runs the connectivity preflight and SELECT 1. Failures
// are reported with the normal error mapping.
func (h *Handler) HealthWarehouse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.warehouse.Preflight.Preflight(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	if err := warehouse.Ping(r.Context(), h.warehouse.Executor); err != nil {
		respondFailure(w, r, err)
		return
	}

	body := WarehouseHealth{
		Status:    "healthy",
		Driver:    h.warehouse.Driver,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if h.warehouse.Breaker != nil {
		body.Breaker = h.warehouse.Breaker.State()
	}
	respondSuccess(w, r, http.StatusOK, body, start, false)
}

// Stats returns engine counters and per-endpoint latency percentiles.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, http.StatusOK, StatsResponse{
		Engine:    h.engine.GetStats(),
		Sessions:  h.sessions.Len(),
		Endpoints: h.performance.GetStats(),
	}, start, false)
}
