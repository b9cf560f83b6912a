// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/mixtape/internal/cache"
	"github.com/tomtom215/mixtape/internal/models"
)

// Selection is what the user picked as the basis of a recommendation.
type Selection struct {
	// Provenance selects which of the fields below is read.
	Provenance models.Provenance `json:"provenance"`

	// TrackURIs are the explicit seeds for track provenance.
	TrackURIs []string `json:"track_uris,omitempty"`

	// Artist is matched case-insensitively and partially for artist provenance.
	Artist string `json:"artist,omitempty"`

	// ArtistTopN is how many of the artist's tracks seed the request, 1..10.
	ArtistTopN int `json:"artist_top_n,omitempty"`

	// PlaylistID seeds playlist provenance with every track of the playlist.
	PlaylistID string `json:"playlist_id,omitempty"`

	Model models.Model `json:"model"`
	TopK  int          `json:"top_k"`
}

// Equal reports whether s and o select the same request.
func (s Selection) Equal(o Selection) bool {
	return s.Provenance == o.Provenance &&
		slices.Equal(s.TrackURIs, o.TrackURIs) &&
		s.Artist == o.Artist &&
		s.ArtistTopN == o.ArtistTopN &&
		s.PlaylistID == o.PlaylistID &&
		s.Model == o.Model &&
		s.TopK == o.TopK
}

// SeedSet is an ordered sequence of unique track URIs.
type SeedSet struct {
	Provenance models.Provenance `json:"provenance"`
	URIs       []string          `json:"uris"`
}

// NewSeedSet deduplicates uris keeping the first occurrence. Blank URIs are
// dropped.
func NewSeedSet(provenance models.Provenance, uris []string) SeedSet {
	seen := make(map[string]struct{}, len(uris))
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return SeedSet{Provenance: provenance, URIs: out}
}

// Len returns the number of seeds.
func (s SeedSet) Len() int {
	return len(s.URIs)
}

// Head returns at most n leading seeds.
func (s SeedSet) Head(n int) []string {
	if n < 0 || n >= len(s.URIs) {
		return slices.Clone(s.URIs)
	}
	return slices.Clone(s.URIs[:n])
}

// SeenSet holds the tracks that must never be recommended.
type SeenSet map[string]struct{}

// NewSeenSet builds a SeenSet from any number of URI lists.
func NewSeenSet(lists ...[]string) SeenSet {
	s := make(SeenSet)
	for _, l := range lists {
		for _, u := range l {
			s[u] = struct{}{}
		}
	}
	return s
}

// Contains reports whether uri is seen.
func (s SeenSet) Contains(uri string) bool {
	_, ok := s[uri]
	return ok
}

// Sorted returns the URIs in ascending order.
func (s SeenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Request is one scoring request. It is also the cache key: two requests
// share a cached result only if every field matches exactly, seed order
// included.
//
// A request with a PlaylistID and no SeedURIs is seeded by the whole
// playlist; otherwise SeedURIs seed it.
type Request struct {
	SeedURIs   []string     `json:"seed_uris"`
	PlaylistID string       `json:"playlist_id,omitempty"`
	Model      models.Model `json:"model"`
	TopK       int          `json:"top_k"`
}

// usesPlaylist reports whether the playlist seeds the request.
func (r Request) usesPlaylist() bool {
	return r.PlaylistID != "" && len(r.SeedURIs) == 0
}

// CacheKey returns the exact-match cache key for r.
func (r Request) CacheKey() string {
	return cache.GenerateKey("recommendations", r)
}

// CurrentRun is the single live result of a session.
type CurrentRun struct {
	Inputs          Selection                  `json:"inputs"`
	SeedURIs        []string                   `json:"seed_uris"`
	PlaylistID      string                     `json:"playlist_id,omitempty"`
	Model           models.Model               `json:"model"`
	TopK            int                        `json:"top_k"`
	SeenSet         []string                   `json:"seen_track_uris"`
	Recommendations []models.RecommendationRow `json:"recommendations"`
	ExplainSeeds    []string                   `json:"explain_seed_uris"`
	Cached          bool                       `json:"cached"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

// CandidateURIs returns at most n leading recommended track URIs.
func (r *CurrentRun) CandidateURIs(n int) []string {
	recs := r.Recommendations
	if n >= 0 && n < len(recs) {
		recs = recs[:n]
	}
	out := make([]string, len(recs))
	for i, row := range recs {
		out[i] = row.URI
	}
	return out
}
