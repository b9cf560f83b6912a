// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package database

import (
	"context"

	"github.com/tomtom215/mixtape/internal/logging"
)

// DemoDataset is a small playlist collection for local runs.
func DemoDataset() Dataset {
	tracks := []Track{
		{"demo:track:001", "Harbor Lights", "The Tidewaters"},
		{"demo:track:002", "Salt and Static", "The Tidewaters"},
		{"demo:track:003", "Low Tide Rising", "The Tidewaters"},
		{"demo:track:004", "Neon Orchard", "Mira Calloway"},
		{"demo:track:005", "Glass Meridian", "Mira Calloway"},
		{"demo:track:006", "Paper Satellites", "Mira Calloway"},
		{"demo:track:007", "Copper Season", "Northbound Static"},
		{"demo:track:008", "Overpass Hymn", "Northbound Static"},
		{"demo:track:009", "Velvet Interstate", "Juno Park"},
		{"demo:track:010", "Afterimage", "Juno Park"},
		{"demo:track:011", "Slow Parade", "Juno Park"},
		{"demo:track:012", "Field Recording No. 4", ""},
		{"demo:track:013", "Cold Brew Morning", "Otis Vale"},
		{"demo:track:014", "Kitchen Radio", "Otis Vale"},
		{"demo:track:015", "Sunday Static", "Otis Vale"},
		{"demo:track:016", "Lantern Street", "The Tidewaters"},
	}

	playlists := []Playlist{
		{"demo:pl:01", "Late Night Drive", []string{"demo:track:001", "demo:track:004", "demo:track:007", "demo:track:009", "demo:track:010"}},
		{"demo:pl:02", "Coastal Chill", []string{"demo:track:001", "demo:track:002", "demo:track:003", "demo:track:016", "demo:track:013"}},
		{"demo:pl:03", "Synth Afternoons", []string{"demo:track:004", "demo:track:005", "demo:track:006", "demo:track:010"}},
		{"demo:pl:04", "Road Trip", []string{"demo:track:007", "demo:track:008", "demo:track:009", "demo:track:001", "demo:track:002"}},
		{"demo:pl:05", "Morning Coffee", []string{"demo:track:013", "demo:track:014", "demo:track:015", "demo:track:012"}},
		{"demo:pl:06", "Focus", []string{"demo:track:012", "demo:track:005", "demo:track:011", "demo:track:014"}},
		{"demo:pl:07", "Indie Mix", []string{"demo:track:002", "demo:track:009", "demo:track:010", "demo:track:011", "demo:track:006"}},
		{"demo:pl:08", "Drive Time Classics", []string{"demo:track:001", "demo:track:007", "demo:track:008", "demo:track:016"}},
	}

	return Dataset{Tracks: tracks, Playlists: playlists}
}

// SeedDemoData loads DemoDataset and builds its popularity summary table.
func (db *DB) SeedDemoData(ctx context.Context, summaryTable string) error {
	ds := DemoDataset()
	if err := db.Load(ctx, ds); err != nil {
		return err
	}
	if summaryTable != "" {
		if err := db.RefreshTrackSummary(ctx, summaryTable); err != nil {
			return err
		}
	}
	logging.Info().
		Int("tracks", len(ds.Tracks)).
		Int("playlists", len(ds.Playlists)).
		Msg("Demo playlist data loaded")
	return nil
}
