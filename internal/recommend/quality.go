// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/mixtape/internal/models"
)

// Popularity bias indications.
const (
	PopularityMorePopular = "more_popular"
	PopularityLessPopular = "less_popular"
	PopularitySimilar     = "similar"
)

// QualityReport summarizes a session's current recommendations.
type QualityReport struct {
	Model          models.Model `json:"model"`
	Count          int          `json:"count"`
	UniqueArtists  int          `json:"unique_artists"`
	ArtistCoverage float64      `json:"artist_coverage"`
	AvgScore       float64      `json:"avg_score"`
	MinScore       int64        `json:"min_score"`
	MaxScore       int64        `json:"max_score"`

	NewArtistRate float64 `json:"new_artist_rate"`

	AvgRecPopularity  float64  `json:"avg_rec_popularity"`
	AvgSeedPopularity float64  `json:"avg_seed_popularity"`
	PopularityRatio   *float64 `json:"popularity_ratio"`
	PopularityBias    string   `json:"popularity_bias"`

	// Shared playlist statistics, co-occurrence only.
	AvgSharedPlaylists    *float64 `json:"avg_shared_playlists,omitempty"`
	MedianSharedPlaylists *float64 `json:"median_shared_playlists,omitempty"`

	PrecisionAtK *float64 `json:"precision_at_k,omitempty"`
	K            int      `json:"k,omitempty"`
}

// Quality reports on the session's current run. When relevant is non-empty
// precision@k is included; k defaults to the number of recommendations.
func (e *Engine) Quality(ctx context.Context, s *Session, relevant []string, k int) (*QualityReport, error) {
	run, err := s.CurrentRun()
	if err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, newValidationError("k", "must not be negative")
	}

	recs := run.Recommendations
	report := basicQuality(run.Model, recs)

	recURIs := run.CandidateURIs(-1)
	lookup := append(append([]string{}, recURIs...), run.ExplainSeeds...)
	meta, err := e.catalog.TracksByURI(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("load track metadata: %w", err)
	}
	popularity, err := e.catalog.TrackPopularity(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("load track popularity: %w", err)
	}

	report.NewArtistRate = newArtistRate(recs, run.ExplainSeeds, meta)

	report.AvgRecPopularity = round(meanPopularity(recURIs, popularity), 2)
	report.AvgSeedPopularity = round(meanPopularity(run.ExplainSeeds, popularity), 2)
	report.PopularityBias = PopularitySimilar
	if seedAvg := meanPopularity(run.ExplainSeeds, popularity); seedAvg > 0 {
		ratio := meanPopularity(recURIs, popularity) / seedAvg
		rounded := round(ratio, 2)
		report.PopularityRatio = &rounded
		switch {
		case ratio > 1.25:
			report.PopularityBias = PopularityMorePopular
		case ratio < 0.8:
			report.PopularityBias = PopularityLessPopular
		}
	}

	if len(relevant) > 0 {
		if k == 0 {
			k = len(recs)
		}
		p := round(PrecisionAtK(recURIs, relevant, k), 3)
		report.PrecisionAtK = &p
		report.K = k
	}
	return report, nil
}

func basicQuality(model models.Model, recs []models.RecommendationRow) *QualityReport {
	r := &QualityReport{Model: model, Count: len(recs), PopularityBias: PopularitySimilar}
	if len(recs) == 0 {
		return r
	}

	artists := make(map[string]struct{})
	var total int64
	r.MinScore, r.MaxScore = recs[0].Score, recs[0].Score
	scores := make([]float64, 0, len(recs))
	for _, row := range recs {
		if row.Artist != "" {
			artists[row.Artist] = struct{}{}
		}
		total += row.Score
		r.MinScore = min(r.MinScore, row.Score)
		r.MaxScore = max(r.MaxScore, row.Score)
		scores = append(scores, float64(row.Score))
	}
	r.UniqueArtists = len(artists)
	r.ArtistCoverage = round(float64(len(artists))/float64(max(len(recs), 1)), 3)
	r.AvgScore = round(float64(total)/float64(len(recs)), 2)

	if model == models.ModelCoOccurrence {
		avg := r.AvgScore
		med := round(median(scores), 2)
		r.AvgSharedPlaylists = &avg
		r.MedianSharedPlaylists = &med
	}
	return r
}

// newArtistRate is the share of recommended artists absent from the seeds.
func newArtistRate(recs []models.RecommendationRow, seeds []string, meta map[string]models.Track) float64 {
	seedArtists := make(map[string]struct{})
	for _, uri := range seeds {
		if a := meta[uri].Artist; a != "" {
			seedArtists[a] = struct{}{}
		}
	}

	recArtists := make(map[string]struct{})
	for _, row := range recs {
		if row.Artist != "" {
			recArtists[row.Artist] = struct{}{}
		}
	}
	if len(recArtists) == 0 {
		return 0
	}

	fresh := 0
	for a := range recArtists {
		if _, ok := seedArtists[a]; !ok {
			fresh++
		}
	}
	return round(float64(fresh)/float64(len(recArtists)), 3)
}

// meanPopularity averages the popularity of the uris present in popularity.
func meanPopularity(uris []string, popularity map[string]int64) float64 {
	var total int64
	n := 0
	for _, u := range uris {
		if p, ok := popularity[u]; ok {
			total += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// PrecisionAtK is |top-k of recommended ∩ relevant| / k. It is 0 when
// nothing is recommended or k < 1.
func PrecisionAtK(recommended, relevant []string, k int) float64 {
	if len(recommended) == 0 || k < 1 {
		return 0
	}
	want := make(map[string]struct{}, len(relevant))
	for _, r := range relevant {
		want[r] = struct{}{}
	}

	top := recommended
	if k < len(top) {
		top = top[:k]
	}
	hits := 0
	for _, r := range top {
		if _, ok := want[r]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
