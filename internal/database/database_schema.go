// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package database

import (
	"context"
	"fmt"
)

func (db *DB) createTables(ctx context.Context) error {
	for _, q := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (db *DB) getTableCreationQueries() []string {
	var queries []string
	if db.schema != "main" {
		queries = append(queries, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", db.schema))
	}
	return append(queries,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			track_uri TEXT PRIMARY KEY,
			track_title TEXT,
			artist_name TEXT
		)`, db.tables.Track),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			playlist_id TEXT PRIMARY KEY,
			playlist_name TEXT
		)`, db.tables.Playlist),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			playlist_id TEXT NOT NULL,
			track_uri TEXT NOT NULL,
			track_position INTEGER NOT NULL
		)`, db.tables.Fact),
	)
}

// RefreshTrackSummary (re)builds the precomputed popularity table named
// table, with columns (track_uri, playlists_count), from the fact relation.
func (db *DB) RefreshTrackSummary(ctx context.Context, table string) error {
	q := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
		SELECT track_uri, COUNT(DISTINCT playlist_id) AS playlists_count
		FROM %s
		GROUP BY track_uri`, table, db.tables.Fact)
	if _, err := db.conn.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("refresh track summary %s: %w", table, err)
	}
	return nil
}

// DropTable removes table if it exists.
func (db *DB) DropTable(ctx context.Context, table string) error {
	if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	return nil
}
