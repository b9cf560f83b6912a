// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...]},
//	  "metadata": {"timestamp": "2026-01-01T12:00:00Z", "query_time_ms": 45}
//	}
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "co-occurrence requires at least one seed track"},
//	  "metadata": {"timestamp": "2026-01-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes:
//   - VALIDATION_ERROR: invalid input
//   - NOT_FOUND: unknown session, playlist or route
//   - CONFIGURATION_ERROR: warehouse connection parameters missing
//   - CONNECTIVITY_ERROR: warehouse unreachable
//   - QUERY_ERROR: warehouse rejected a query
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
