// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mixtape/internal/models"
)

// MatrixCell is one seed/candidate pair of the explanation matrix.
type MatrixCell struct {
	SeedURI        string `json:"seed_uri"`
	SeedLabel      string `json:"seed_label"`
	CandidateURI   string `json:"candidate_uri"`
	CandidateLabel string `json:"candidate_label"`
	Shared         int64  `json:"shared_playlists"`
}

// ArtistEdge sums shared playlists between two artists.
type ArtistEdge struct {
	SeedArtist      string `json:"seed_artist"`
	CandidateArtist string `json:"candidate_artist"`
	Shared          int64  `json:"shared_playlists"`
}

// Contributor is a seed that shares playlists with a candidate.
type Contributor struct {
	SeedURI   string `json:"seed_uri"`
	SeedLabel string `json:"seed_label"`
	Shared    int64  `json:"shared_playlists"`
}

// Breakdown lists the seeds contributing to one candidate.
type Breakdown struct {
	CandidateURI   string        `json:"candidate_uri"`
	CandidateLabel string        `json:"candidate_label"`
	Contributors   []Contributor `json:"contributors"`
}

// Explanation is the co-occurrence evidence behind a ranking.
type Explanation struct {
	SeedURIs      []string `json:"seed_uris"`
	CandidateURIs []string `json:"candidate_uris"`

	// Matrix has exactly len(SeedURIs)*len(CandidateURIs) cells, seed-major,
	// with zero for pairs sharing no playlist.
	Matrix []MatrixCell `json:"matrix"`

	ArtistEdges []ArtistEdge `json:"artist_edges"`
	Breakdown   *Breakdown   `json:"breakdown,omitempty"`

	index map[[2]string]int
}

// Cell returns the matrix cell of seed and candidate.
func (x *Explanation) Cell(seed, candidate string) (MatrixCell, bool) {
	i, ok := x.index[[2]string{seed, candidate}]
	if !ok {
		return MatrixCell{}, false
	}
	return x.Matrix[i], true
}

// BreakdownFor returns the contributing seeds of candidate by shared count
// descending; equal counts keep seed order. Seeds sharing nothing are left
// out.
func (x *Explanation) BreakdownFor(candidate string) (*Breakdown, error) {
	if len(x.SeedURIs) == 0 {
		return &Breakdown{CandidateURI: candidate, CandidateLabel: candidate, Contributors: []Contributor{}}, nil
	}
	first, ok := x.index[[2]string{x.SeedURIs[0], candidate}]
	if !ok {
		return nil, newValidationError("candidate", "%q is not among the explained candidates", candidate)
	}

	b := &Breakdown{
		CandidateURI:   candidate,
		CandidateLabel: x.Matrix[first].CandidateLabel,
		Contributors:   []Contributor{},
	}
	for _, seed := range x.SeedURIs {
		cell := x.Matrix[x.index[[2]string{seed, candidate}]]
		if cell.Shared > 0 {
			b.Contributors = append(b.Contributors, Contributor{
				SeedURI:   cell.SeedURI,
				SeedLabel: cell.SeedLabel,
				Shared:    cell.Shared,
			})
		}
	}
	sort.SliceStable(b.Contributors, func(i, j int) bool {
		return b.Contributors[i].Shared > b.Contributors[j].Shared
	})
	return b, nil
}

// BuildExplanationMatrix computes the dense seed×candidate matrix and the
// artist rollup. Both lists are deduplicated and bounded by the configured
// explanation limits. The edge and metadata reads run concurrently.
func (e *Engine) BuildExplanationMatrix(ctx context.Context, seeds, candidates []string) (*Explanation, error) {
	seeds = NewSeedSet(models.ProvenanceTrack, seeds).Head(e.config.MaxExplainSeeds)
	candidates = NewSeedSet(models.ProvenanceTrack, candidates).Head(e.config.MaxExplainCandidates)

	x := &Explanation{
		SeedURIs:      seeds,
		CandidateURIs: candidates,
		Matrix:        make([]MatrixCell, 0, len(seeds)*len(candidates)),
		ArtistEdges:   []ArtistEdge{},
		index:         make(map[[2]string]int, len(seeds)*len(candidates)),
	}
	if len(seeds) == 0 || len(candidates) == 0 {
		return x, nil
	}

	if err := e.preflight.Preflight(ctx); err != nil {
		return nil, err
	}

	var (
		edges    []models.CoOccurrenceEdge
		seedMeta map[string]models.Track
		candMeta map[string]models.Track
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		edges, err = e.catalog.SeedCandidateEdges(gctx, seeds, candidates)
		if err != nil {
			return fmt.Errorf("load co-occurrence edges: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		seedMeta, err = e.catalog.TracksByURI(gctx, seeds)
		if err != nil {
			return fmt.Errorf("load seed metadata: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		candMeta, err = e.catalog.TracksByURI(gctx, candidates)
		if err != nil {
			return fmt.Errorf("load candidate metadata: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shared := make(map[[2]string]int64, len(edges))
	for _, edge := range edges {
		shared[[2]string{edge.SeedURI, edge.CandidateURI}] = edge.Shared
	}

	for _, seed := range seeds {
		seedTrack := trackOrURI(seedMeta, seed)
		for _, cand := range candidates {
			candTrack := trackOrURI(candMeta, cand)
			key := [2]string{seed, cand}
			x.index[key] = len(x.Matrix)
			x.Matrix = append(x.Matrix, MatrixCell{
				SeedURI:        seed,
				SeedLabel:      seedTrack.Label(),
				CandidateURI:   cand,
				CandidateLabel: candTrack.Label(),
				Shared:         shared[key],
			})
		}
	}

	x.ArtistEdges = rollupArtists(edges, seedMeta, candMeta)
	return x, nil
}

// Explain builds the explanation of the session's current run, with the
// breakdown of candidate, or of the top recommendation when candidate is
// empty.
func (e *Engine) Explain(ctx context.Context, s *Session, candidate string) (*Explanation, error) {
	run, err := s.CurrentRun()
	if err != nil {
		return nil, err
	}

	x, err := e.BuildExplanationMatrix(ctx, run.ExplainSeeds, run.CandidateURIs(e.config.MaxExplainCandidates))
	if err != nil {
		return nil, err
	}

	if candidate == "" {
		if len(x.CandidateURIs) == 0 {
			return x, nil
		}
		candidate = x.CandidateURIs[0]
	}
	b, err := x.BreakdownFor(candidate)
	if err != nil {
		return nil, err
	}
	x.Breakdown = b
	return x, nil
}

// rollupArtists sums edges per artist pair, dropping pairs where either
// artist is unknown.
func rollupArtists(edges []models.CoOccurrenceEdge, seedMeta, candMeta map[string]models.Track) []ArtistEdge {
	sums := make(map[[2]string]int64)
	for _, edge := range edges {
		sa := seedMeta[edge.SeedURI].Artist
		ca := candMeta[edge.CandidateURI].Artist
		if sa == "" || ca == "" {
			continue
		}
		sums[[2]string{sa, ca}] += edge.Shared
	}

	out := make([]ArtistEdge, 0, len(sums))
	for k, v := range sums {
		out = append(out, ArtistEdge{SeedArtist: k[0], CandidateArtist: k[1], Shared: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Shared != out[j].Shared {
			return out[i].Shared > out[j].Shared
		}
		if out[i].SeedArtist != out[j].SeedArtist {
			return out[i].SeedArtist < out[j].SeedArtist
		}
		return out[i].CandidateArtist < out[j].CandidateArtist
	})
	return out
}

func trackOrURI(meta map[string]models.Track, uri string) models.Track {
	if t, ok := meta[uri]; ok {
		return t
	}
	return models.Track{URI: uri}
}
