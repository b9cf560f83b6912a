// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package models defines the data structures shared by the catalog, the
recommendation engine and the HTTP API.

Model Categories:

 1. Reference data read from the warehouse:
    - Track, Playlist: dimension rows
    - ScoredTrack, ArtistTrackCount, Neighbor, CatalogStats: catalog aggregates

 2. Recommendation data:
    - Provenance, Model: how a request was seeded and scored
    - RecommendationRow: one ranked recommendation
    - CoOccurrenceEdge: shared-playlist count between a seed and a candidate

 3. API envelopes:
    - APIResponse, Metadata, APIError

All JSON field names use snake_case to match the warehouse column names.
*/
package models
