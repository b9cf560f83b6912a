// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/mixtape/internal/config"
)

func setupTestDB(t *testing.T, schema string) *DB {
	t.Helper()

	db, err := New(&config.WarehouseConfig{
		Driver:     config.DriverDuckDB,
		DuckDBPath: ":memory:",
		Schema:     schema,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestNew_CreatesRelations(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   string
	}{
		{name: "default schema", schema: "", want: "main.fact_playlist_track"},
		{name: "custom schema", schema: "music", want: "music.fact_playlist_track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t, tt.schema)
			if db.Tables().Fact != tt.want {
				t.Errorf("Fact = %q, want %q", db.Tables().Fact, tt.want)
			}
			if n := countRows(t, db, db.Tables().Fact); n != 0 {
				t.Errorf("new fact table has %d rows, want 0", n)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	db := setupTestDB(t, "")
	ctx := context.Background()

	ds := Dataset{
		Tracks: []Track{{URI: "A", Title: "Alpha", Artist: "Ann"}, {URI: "B", Title: "Beta"}},
		Playlists: []Playlist{
			{ID: "P1", Name: "First", Tracks: []string{"A", "B"}},
		},
	}
	if err := db.Load(ctx, ds); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Reloading a playlist replaces its facts.
	ds.Playlists[0].Tracks = []string{"B"}
	if err := db.Load(ctx, ds); err != nil {
		t.Fatalf("second Load: %v", err)
	}

	if n := countRows(t, db, db.Tables().Fact); n != 1 {
		t.Errorf("fact rows = %d, want 1", n)
	}
	if n := countRows(t, db, db.Tables().Track); n != 2 {
		t.Errorf("track rows = %d, want 2", n)
	}

	var artistValid bool
	row := db.Conn().QueryRowContext(ctx, "SELECT artist_name IS NOT NULL FROM "+db.Tables().Track+" WHERE track_uri = 'B'")
	if err := row.Scan(&artistValid); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if artistValid {
		t.Error("empty artist should be stored as NULL")
	}
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t, "")
	ctx := context.Background()

	if err := db.SeedDemoData(ctx, "gold_track_summary"); err != nil {
		t.Fatalf("SeedDemoData: %v", err)
	}

	ds := DemoDataset()
	if n := countRows(t, db, db.Tables().Playlist); n != len(ds.Playlists) {
		t.Errorf("playlists = %d, want %d", n, len(ds.Playlists))
	}

	var count int
	row := db.Conn().QueryRowContext(ctx, "SELECT playlists_count FROM gold_track_summary WHERE track_uri = 'demo:track:001'")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan summary: %v", err)
	}
	if count != 4 {
		t.Errorf("playlists_count(demo:track:001) = %d, want 4", count)
	}
}
