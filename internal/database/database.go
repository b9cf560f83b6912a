// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package database provides the local DuckDB warehouse: the same fact and
// dimension relations the remote warehouse exposes, created in-process for
// development, demos and tests.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/warehouse/query"
)

// DB wraps a DuckDB connection holding the playlist/track relations.
type DB struct {
	conn   *sql.DB
	schema string
	tables query.Tables
}

// New opens (or creates) the DuckDB database at cfg.DuckDBPath and ensures
// the relations exist.
func New(cfg *config.WarehouseConfig) (*DB, error) {
	path := cfg.DuckDBPath
	dsn := path
	if path == ":memory:" {
		dsn = ""
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		// 0750 per gosec G301
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := cfg.EffectiveSchema()
	db := &DB{conn: conn, schema: schema, tables: query.NewTables(schema)}

	ctx, cancel := schemaContext()
	defer cancel()
	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", path).Str("schema", schema).Msg("DuckDB warehouse ready")
	return db, nil
}

// Conn returns the underlying handle for the warehouse executor.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Tables returns the qualified relation names.
func (db *DB) Tables() query.Tables {
	return db.tables
}

// Schema returns the schema holding the relations.
func (db *DB) Schema() string {
	return db.schema
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
