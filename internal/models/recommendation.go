// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package models

import "strings"

// Provenance records where a seed set came from.
type Provenance string

const (
	ProvenanceTrack    Provenance = "track"
	ProvenanceArtist   Provenance = "artist"
	ProvenancePlaylist Provenance = "playlist"
)

// Valid reports whether p is a known provenance.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceTrack, ProvenanceArtist, ProvenancePlaylist:
		return true
	}
	return false
}

// Model selects a scoring strategy.
type Model string

const (
	ModelCoOccurrence Model = "co-occurrence"
	ModelPopularity   Model = "popularity"
)

// ParseModel normalizes a model name. Matching is case-insensitive and
// accepts prefixes ("pop", "co"); the second result is false for anything else.
func ParseModel(s string) (Model, bool) {
	m := strings.ToLower(strings.TrimSpace(s))
	switch {
	case m == "":
		return "", false
	case strings.HasPrefix(m, "pop"):
		return ModelPopularity, true
	case strings.HasPrefix(m, "co"):
		return ModelCoOccurrence, true
	}
	return "", false
}

// RequiresSeeds reports whether the model cannot score without seed tracks.
func (m Model) RequiresSeeds() bool {
	return m == ModelCoOccurrence
}

// RecommendationRow is one ranked recommendation. Ranks within a result are
// exactly 1..N.
type RecommendationRow struct {
	Rank int `json:"rank"`
	Track
	Score int64 `json:"score"`
}

// CoOccurrenceEdge is the number of distinct playlists containing both
// SeedURI and CandidateURI.
type CoOccurrenceEdge struct {
	SeedURI      string `json:"seed_track_uri"`
	CandidateURI string `json:"candidate_track_uri"`
	Shared       int64  `json:"shared_playlists"`
}
