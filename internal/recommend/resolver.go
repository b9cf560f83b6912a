// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/mixtape/internal/models"
)

// Catalog is the reference-data lookup the engine depends on.
// It is implemented by *catalog.Repository.
type Catalog interface {
	// ArtistTopTracks ranks the tracks of matching artists by distinct
	// playlist count, then track URI.
	ArtistTopTracks(ctx context.Context, term string, limit int) ([]models.ScoredTrack, error)

	// PlaylistTracks returns a playlist's tracks in position order.
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)

	// TracksByURI returns metadata for the existing tracks among uris.
	TracksByURI(ctx context.Context, uris []string) (map[string]models.Track, error)

	// TrackPopularity returns distinct playlist counts for uris.
	TrackPopularity(ctx context.Context, uris []string) (map[string]int64, error)

	// SeedCandidateEdges returns positive shared-playlist counts.
	SeedCandidateEdges(ctx context.Context, seeds, candidates []string) ([]models.CoOccurrenceEdge, error)
}

// Resolution is a resolved Selection.
type Resolution struct {
	Seeds SeedSet
	Seen  SeenSet
}

// Resolver turns a Selection into seeds.
type Resolver struct {
	catalog           Catalog
	artistSeedDefault int
}

// NewResolver creates a Resolver. artistSeedDefault applies when a selection
// leaves ArtistTopN at zero.
func NewResolver(catalog Catalog, artistSeedDefault int) *Resolver {
	return &Resolver{catalog: catalog, artistSeedDefault: artistSeedDefault}
}

// Resolve resolves sel. model is the normalized model of the request; a
// co-occurrence request resolving to no seeds fails with a ValidationError.
// Track selections are validated without querying.
func (r *Resolver) Resolve(ctx context.Context, sel Selection, model models.Model) (Resolution, error) {
	var res Resolution

	switch sel.Provenance {
	case models.ProvenanceTrack:
		res.Seeds = NewSeedSet(models.ProvenanceTrack, sel.TrackURIs)
		res.Seen = NewSeenSet(res.Seeds.URIs)

	case models.ProvenanceArtist:
		n := sel.ArtistTopN
		if n == 0 {
			n = r.artistSeedDefault
		}
		if n < 1 || n > MaxArtistTopN {
			return res, newValidationError("artist_top_n", "must be between 1 and %d", MaxArtistTopN)
		}
		artist := strings.TrimSpace(sel.Artist)
		if artist == "" {
			return res, newValidationError("artist", "is required for artist seeds")
		}
		tracks, err := r.catalog.ArtistTopTracks(ctx, artist, n)
		if err != nil {
			return res, fmt.Errorf("resolve artist seeds: %w", err)
		}
		uris := make([]string, len(tracks))
		for i, t := range tracks {
			uris[i] = t.URI
		}
		res.Seeds = NewSeedSet(models.ProvenanceArtist, uris)
		res.Seen = NewSeenSet(res.Seeds.URIs)

	case models.ProvenancePlaylist:
		id := strings.TrimSpace(sel.PlaylistID)
		if id == "" {
			return res, newValidationError("playlist_id", "is required for playlist seeds")
		}
		tracks, err := r.catalog.PlaylistTracks(ctx, id)
		if err != nil {
			return res, fmt.Errorf("resolve playlist seeds: %w", err)
		}
		res.Seeds = NewSeedSet(models.ProvenancePlaylist, tracks)
		// The whole playlist is seen, not only the seeds used for display.
		res.Seen = NewSeenSet(tracks)

	default:
		return res, newValidationError("provenance", "unknown provenance %q", sel.Provenance)
	}

	if model.RequiresSeeds() && res.Seeds.Len() == 0 {
		return res, newValidationError("seeds", "%s requires at least one seed track", model)
	}
	return res, nil
}
