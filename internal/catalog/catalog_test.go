// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package catalog

import (
	"context"
	"io"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/database"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/warehouse"
)

// Scenario data: P1:{A,C}, P2:{B,C}, P3:{A,B,D}.
func setupTestRepo(t *testing.T) (*Repository, *atomic.Int32) {
	t.Helper()

	db, err := database.New(&config.WarehouseConfig{Driver: config.DriverDuckDB, DuckDBPath: ":memory:"})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = db.Load(context.Background(), database.Dataset{
		Tracks: []database.Track{
			{URI: "A", Title: "Alpha", Artist: "Ann"},
			{URI: "B", Title: "Beta", Artist: "Bob"},
			{URI: "C", Title: "Gamma 100%", Artist: "Ann"},
			{URI: "D", Title: "Delta", Artist: ""},
		},
		Playlists: []database.Playlist{
			{ID: "P1", Name: "Morning Mix", Tracks: []string{"A", "C"}},
			{ID: "P2", Name: "Evening Mix", Tracks: []string{"B", "C"}},
			{ID: "P3", Name: "Road_Trip", Tracks: []string{"A", "B", "D"}},
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sqlExec := warehouse.NewSQLExecutor(db.Conn(), warehouse.SQLOptions{}, logging.NewTestLogger(io.Discard))
	var calls atomic.Int32
	counting := warehouse.ExecutorFunc(func(ctx context.Context, stmt warehouse.Statement) (*warehouse.ResultSet, error) {
		calls.Add(1)
		return sqlExec.Query(ctx, stmt)
	})
	return New(counting, db.Tables()), &calls
}

func TestSearchTracks(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		term string
		want []string
	}{
		{"a", []string{"A", "B", "D", "C"}},
		{"ALPHA", []string{"A"}},
		{"100%", []string{"C"}},
		{"_", nil},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			tracks, err := repo.SearchTracks(ctx, tt.term, 0)
			if err != nil {
				t.Fatalf("SearchTracks: %v", err)
			}
			var got []string
			for _, tr := range tracks {
				got = append(got, tr.URI)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchTracks(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestArtistTopTracks(t *testing.T) {
	repo, _ := setupTestRepo(t)

	got, err := repo.ArtistTopTracks(context.Background(), "an", 10)
	if err != nil {
		t.Fatalf("ArtistTopTracks: %v", err)
	}
	want := []models.ScoredTrack{
		{Track: models.Track{URI: "A", Title: "Alpha", Artist: "Ann"}, Score: 2},
		{Track: models.Track{URI: "C", Title: "Gamma 100%", Artist: "Ann"}, Score: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArtistTopTracks = %+v, want %+v", got, want)
	}

	limited, err := repo.ArtistTopTracks(context.Background(), "an", 1)
	if err != nil {
		t.Fatalf("ArtistTopTracks: %v", err)
	}
	if len(limited) != 1 || limited[0].URI != "A" {
		t.Errorf("limit 1 should keep the tie-break winner A, got %+v", limited)
	}
}

func TestPlaylists(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	found, err := repo.SearchPlaylists(ctx, "mix", 0)
	if err != nil {
		t.Fatalf("SearchPlaylists: %v", err)
	}
	if len(found) != 2 || found[0].ID != "P2" || found[1].ID != "P1" {
		t.Errorf("SearchPlaylists = %+v, want P2 then P1", found)
	}

	pl, ok, err := repo.PlaylistByID(ctx, "P3")
	if err != nil || !ok || pl.Name != "Road_Trip" {
		t.Errorf("PlaylistByID(P3) = %+v, %v, %v", pl, ok, err)
	}
	if _, ok, _ := repo.PlaylistByID(ctx, "nope"); ok {
		t.Error("unknown playlist should not be found")
	}

	tracks, err := repo.PlaylistTracks(ctx, "P3")
	if err != nil {
		t.Fatalf("PlaylistTracks: %v", err)
	}
	if !reflect.DeepEqual(tracks, []string{"A", "B", "D"}) {
		t.Errorf("PlaylistTracks = %v", tracks)
	}
}

func TestStatsAndTopArtists(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (models.CatalogStats{Tracks: 4, Playlists: 3, Artists: 2}) {
		t.Errorf("Stats = %+v", stats)
	}

	artists, err := repo.TopArtists(ctx, 0)
	if err != nil {
		t.Fatalf("TopArtists: %v", err)
	}
	want := []models.ArtistTrackCount{{Artist: "Ann", Tracks: 2}, {Artist: "Bob", Tracks: 1}}
	if !reflect.DeepEqual(artists, want) {
		t.Errorf("TopArtists = %+v, want %+v", artists, want)
	}
}

func TestCoOccurrencePairs(t *testing.T) {
	repo, _ := setupTestRepo(t)

	got, err := repo.CoOccurrencePairs(context.Background(), "A", 0)
	if err != nil {
		t.Fatalf("CoOccurrencePairs: %v", err)
	}
	var uris []string
	for _, n := range got {
		uris = append(uris, n.URI)
		if n.Weight != 1 {
			t.Errorf("weight(%s) = %d, want 1", n.URI, n.Weight)
		}
	}
	if !reflect.DeepEqual(uris, []string{"B", "C", "D"}) {
		t.Errorf("neighbors = %v, want [B C D]", uris)
	}
}

func TestBatchLookups(t *testing.T) {
	repo, calls := setupTestRepo(t)
	ctx := context.Background()

	meta, err := repo.TracksMetadata(ctx, []string{"D", "A", "missing"})
	if err != nil {
		t.Fatalf("TracksMetadata: %v", err)
	}
	if len(meta) != 2 || meta[0].URI != "A" || meta[1].Artist != "" {
		t.Errorf("TracksMetadata = %+v", meta)
	}

	pop, err := repo.TrackPopularity(ctx, []string{"A", "D"})
	if err != nil {
		t.Fatalf("TrackPopularity: %v", err)
	}
	if !reflect.DeepEqual(pop, map[string]int64{"A": 2, "D": 1}) {
		t.Errorf("TrackPopularity = %v", pop)
	}

	before := calls.Load()
	if m, _ := repo.TracksMetadata(ctx, nil); len(m) != 0 {
		t.Error("empty metadata lookup should be empty")
	}
	if p, _ := repo.TrackPopularity(ctx, nil); len(p) != 0 {
		t.Error("empty popularity lookup should be empty")
	}
	if e, _ := repo.SeedCandidateEdges(ctx, []string{"A"}, nil); len(e) != 0 {
		t.Error("empty candidate list should yield no edges")
	}
	if calls.Load() != before {
		t.Errorf("empty inputs issued %d queries, want 0", calls.Load()-before)
	}
}

func TestSeedCandidateEdges(t *testing.T) {
	repo, _ := setupTestRepo(t)

	got, err := repo.SeedCandidateEdges(context.Background(), []string{"A", "B"}, []string{"C", "D"})
	if err != nil {
		t.Fatalf("SeedCandidateEdges: %v", err)
	}
	want := []models.CoOccurrenceEdge{
		{SeedURI: "A", CandidateURI: "C", Shared: 1},
		{SeedURI: "A", CandidateURI: "D", Shared: 1},
		{SeedURI: "B", CandidateURI: "C", Shared: 1},
		{SeedURI: "B", CandidateURI: "D", Shared: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %+v, want %+v", got, want)
	}
}
