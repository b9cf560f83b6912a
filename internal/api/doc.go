// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package api provides the HTTP REST API layer for Mixtape.

It is a thin presentation layer over the recommendation engine: every
handler parses and validates its input, calls one engine or catalog
operation, and writes the standard JSON envelope.

Key Components:

  - Router: chi route tree and middleware stack (chi_router.go)
  - ChiMiddleware: CORS, rate limiting, request IDs, logging and metrics
  - Handler: endpoint implementations, split by area
  - Response formatting: models.APIResponse envelope encoded with goccy/go-json
  - Error mapping: typed engine and warehouse errors to status codes

Endpoints (all under /api/v1):

	GET    /health                     liveness and uptime
	GET    /health/warehouse           preflight and SELECT 1
	GET    /stats                      engine and cache counters
	GET    /catalog/stats              distinct tracks, playlists, artists
	GET    /catalog/top-artists        artists by track count
	GET    /search/tracks?q=           title search
	GET    /search/artists?q=          artist tracks by playlist count
	GET    /search/playlists?q=        playlist name search
	GET    /tracks/{uri}/cooccurrence  tracks sharing playlists with one track
	POST   /recommendations            stateless recommendation request
	POST   /sessions                   new session
	DELETE /sessions/{id}              end a session
	PUT    /sessions/{id}/inputs       set the seed selection
	POST   /sessions/{id}/generate     compute the current run
	GET    /sessions/{id}/run          read the current run
	GET    /sessions/{id}/explain      co-occurrence evidence for the run
	GET    /sessions/{id}/quality      quality report of the run

Prometheus metrics are served at /metrics.

Response Format:

	{
	  "status": "success",
	  "data": { ... },
	  "metadata": {"timestamp": "...", "query_time_ms": 12, "cached": true, "request_id": "..."}
	}

Errors carry {"code", "message", "details"} under "error"; see errors.go
for the code table.
*/
package api
