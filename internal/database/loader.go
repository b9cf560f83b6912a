// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Track is a dim_track row. An empty Artist is stored as NULL.
type Track struct {
	URI    string
	Title  string
	Artist string
}

// Playlist is a dim_playlist row plus its ordered tracks.
type Playlist struct {
	ID     string
	Name   string
	Tracks []string
}

// Dataset is a batch of reference and fact data to load.
type Dataset struct {
	Tracks    []Track
	Playlists []Playlist
}

// Load writes ds in one transaction. Tracks and playlists are upserted; a
// loaded playlist's fact rows replace any it had before, positioned 0..n-1.
func (db *DB) Load(ctx context.Context, ds Dataset) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range ds.Tracks {
		var artist sql.NullString
		if t.Artist != "" {
			artist = sql.NullString{String: t.Artist, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT OR REPLACE INTO %s (track_uri, track_title, artist_name) VALUES (?, ?, ?)", db.tables.Track),
			t.URI, t.Title, artist); err != nil {
			return fmt.Errorf("insert track %s: %w", t.URI, err)
		}
	}

	for _, p := range ds.Playlists {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT OR REPLACE INTO %s (playlist_id, playlist_name) VALUES (?, ?)", db.tables.Playlist),
			p.ID, p.Name); err != nil {
			return fmt.Errorf("insert playlist %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE playlist_id = ?", db.tables.Fact), p.ID); err != nil {
			return fmt.Errorf("clear playlist %s: %w", p.ID, err)
		}
		for pos, uri := range p.Tracks {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (playlist_id, track_uri, track_position) VALUES (?, ?, ?)", db.tables.Fact),
				p.ID, uri, pos); err != nil {
				return fmt.Errorf("insert fact %s/%s: %w", p.ID, uri, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}
