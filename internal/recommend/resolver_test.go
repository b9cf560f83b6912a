// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/mixtape/internal/models"
)

// fakeCatalog serves fixed data and counts lookups.
type fakeCatalog struct {
	artistTracks   []models.ScoredTrack
	playlistTracks map[string][]string
	err            error

	calls     int
	lastLimit int
}

func (f *fakeCatalog) ArtistTopTracks(_ context.Context, _ string, limit int) ([]models.ScoredTrack, error) {
	f.calls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.artistTracks) {
		return f.artistTracks[:limit], nil
	}
	return f.artistTracks, nil
}

func (f *fakeCatalog) PlaylistTracks(_ context.Context, id string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.playlistTracks[id], nil
}

func (f *fakeCatalog) TracksByURI(context.Context, []string) (map[string]models.Track, error) {
	f.calls++
	return map[string]models.Track{}, f.err
}

func (f *fakeCatalog) TrackPopularity(context.Context, []string) (map[string]int64, error) {
	f.calls++
	return map[string]int64{}, f.err
}

func (f *fakeCatalog) SeedCandidateEdges(context.Context, []string, []string) ([]models.CoOccurrenceEdge, error) {
	f.calls++
	return nil, f.err
}

func scored(uris ...string) []models.ScoredTrack {
	out := make([]models.ScoredTrack, len(uris))
	for i, u := range uris {
		out[i] = models.ScoredTrack{Track: models.Track{URI: u}, Score: int64(len(uris) - i)}
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		sel       Selection
		model     models.Model
		wantSeeds []string
		wantSeen  []string
		wantLimit int
		wantCalls int
	}{
		{
			name:      "tracks need no query",
			sel:       Selection{Provenance: models.ProvenanceTrack, TrackURIs: []string{"x", " y ", "x", ""}},
			model:     models.ModelCoOccurrence,
			wantSeeds: []string{"x", "y"},
			wantSeen:  []string{"x", "y"},
		},
		{
			name:      "artist default count",
			sel:       Selection{Provenance: models.ProvenanceArtist, Artist: "Ann"},
			model:     models.ModelCoOccurrence,
			wantSeeds: []string{"a1", "a2", "a3"},
			wantSeen:  []string{"a1", "a2", "a3"},
			wantLimit: 3,
			wantCalls: 1,
		},
		{
			name:      "artist explicit count",
			sel:       Selection{Provenance: models.ProvenanceArtist, Artist: "Ann", ArtistTopN: 2},
			model:     models.ModelCoOccurrence,
			wantSeeds: []string{"a1", "a2"},
			wantSeen:  []string{"a1", "a2"},
			wantLimit: 2,
			wantCalls: 1,
		},
		{
			name:      "playlist seen covers every track",
			sel:       Selection{Provenance: models.ProvenancePlaylist, PlaylistID: "p"},
			model:     models.ModelPopularity,
			wantSeeds: []string{"p1", "p2"},
			wantSeen:  []string{"p1", "p2"},
			wantCalls: 1,
		},
		{
			name:      "empty playlist is fine for popularity",
			sel:       Selection{Provenance: models.ProvenancePlaylist, PlaylistID: "empty"},
			model:     models.ModelPopularity,
			wantSeeds: []string{},
			wantSeen:  []string{},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &fakeCatalog{
				artistTracks:   scored("a1", "a2", "a3", "a4"),
				playlistTracks: map[string][]string{"p": {"p1", "p2", "p1"}},
			}
			res, err := NewResolver(cat, 3).Resolve(context.Background(), tt.sel, tt.model)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !reflect.DeepEqual(res.Seeds.URIs, tt.wantSeeds) {
				t.Errorf("seeds = %v, want %v", res.Seeds.URIs, tt.wantSeeds)
			}
			if got := res.Seen.Sorted(); !reflect.DeepEqual(got, tt.wantSeen) {
				t.Errorf("seen = %v, want %v", got, tt.wantSeen)
			}
			if res.Seeds.Provenance != tt.sel.Provenance {
				t.Errorf("provenance = %s, want %s", res.Seeds.Provenance, tt.sel.Provenance)
			}
			if cat.calls != tt.wantCalls {
				t.Errorf("catalog calls = %d, want %d", cat.calls, tt.wantCalls)
			}
			if tt.wantLimit > 0 && cat.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", cat.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		sel       Selection
		model     models.Model
		catErr    error
		wantField string
		wantErr   error
	}{
		{
			name:      "no tracks for co-occurrence",
			sel:       Selection{Provenance: models.ProvenanceTrack},
			model:     models.ModelCoOccurrence,
			wantField: "seeds",
		},
		{
			name:      "artist count too large",
			sel:       Selection{Provenance: models.ProvenanceArtist, Artist: "Ann", ArtistTopN: 11},
			model:     models.ModelCoOccurrence,
			wantField: "artist_top_n",
		},
		{
			name:      "artist count negative",
			sel:       Selection{Provenance: models.ProvenanceArtist, Artist: "Ann", ArtistTopN: -1},
			model:     models.ModelPopularity,
			wantField: "artist_top_n",
		},
		{
			name:      "blank artist",
			sel:       Selection{Provenance: models.ProvenanceArtist, Artist: "  "},
			model:     models.ModelPopularity,
			wantField: "artist",
		},
		{
			name:      "blank playlist",
			sel:       Selection{Provenance: models.ProvenancePlaylist},
			model:     models.ModelPopularity,
			wantField: "playlist_id",
		},
		{
			name:      "unknown provenance",
			sel:       Selection{Provenance: "album"},
			model:     models.ModelPopularity,
			wantField: "provenance",
		},
		{
			name:    "catalog failure",
			sel:     Selection{Provenance: models.ProvenancePlaylist, PlaylistID: "p"},
			model:   models.ModelPopularity,
			catErr:  boom,
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &fakeCatalog{err: tt.catErr}
			_, err := NewResolver(cat, 5).Resolve(context.Background(), tt.sel, tt.model)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
			if cat.calls != 0 {
				t.Errorf("validation issued %d catalog calls", cat.calls)
			}
		})
	}
}
