// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package config loads Mixtape configuration from built-in defaults, an
// optional YAML file and environment variables, in increasing priority.
//
// The three Databricks connection parameters keep their conventional names:
//
//	DATABRICKS_SERVER_HOSTNAME=adb-123.azuredatabricks.net
//	DATABRICKS_HTTP_PATH=/sql/1.0/warehouses/abc
//	DATABRICKS_TOKEN=dapi...
//
// When the databricks driver is selected and any of them is missing, Load
// fails with a *ConfigurationError naming exactly the missing parameters.
package config

import (
	"time"
)

// Driver names accepted by WarehouseConfig.Driver.
const (
	DriverDatabricks = "databricks"
	DriverDuckDB     = "duckdb"
)

// Config is the root configuration.
type Config struct {
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WarehouseConfig selects and tunes the query backend.
type WarehouseConfig struct {
	// Driver is "databricks" (remote SQL warehouse) or "duckdb" (local file or memory).
	Driver string `koanf:"driver"`

	// Databricks connection parameters.
	ServerHostname string `koanf:"server_hostname"`
	HTTPPath       string `koanf:"http_path"`
	Token          string `koanf:"token"`

	// Schema qualifies the fact and dimension tables. Empty means the
	// driver default: "default" for databricks, "main" for duckdb.
	Schema string `koanf:"schema"`

	// SummaryTables are the precomputed popularity tables tried in order
	// before falling back to the fact table. Empty means
	// ["gold_track_summary", "<schema>.gold_track_summary"].
	SummaryTables []string `koanf:"summary_tables"`

	// DuckDBPath is a database file or ":memory:".
	DuckDBPath string `koanf:"duckdb_path"`

	// SeedDemoData loads a small built-in playlist dataset into duckdb on startup.
	SeedDemoData bool `koanf:"seed_demo_data"`

	// SummaryRefreshInterval rebuilds the duckdb popularity summary table
	// periodically. Zero disables the refresh; databricks summaries are
	// maintained by the pipeline that owns them.
	SummaryRefreshInterval time.Duration `koanf:"summary_refresh_interval"`

	// ConnectTimeout bounds the DNS/TCP preflight.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// QueryTimeout bounds a single query.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	MaxConcurrentQueries int     `koanf:"max_concurrent_queries"`
	QueriesPerSecond     float64 `koanf:"queries_per_second"`
	QueryBurst           int     `koanf:"query_burst"`

	// BreakerFailures consecutive failures open the circuit breaker for BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	DefaultModel string `koanf:"default_model"`
	DefaultTopK  int    `koanf:"default_top_k"`
	MaxTopK      int    `koanf:"max_top_k"`

	MaxExplainSeeds      int `koanf:"max_explain_seeds"`
	MaxExplainCandidates int `koanf:"max_explain_candidates"`

	ArtistSeedDefault int `koanf:"artist_seed_default"`

	SearchLimit            int `koanf:"search_limit"`
	ArtistSearchLimit      int `koanf:"artist_search_limit"`
	CoOccurrencePairsLimit int `koanf:"cooccurrence_pairs_limit"`
}

// SessionConfig controls in-memory recommendation sessions.
type SessionConfig struct {
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	MaxSessions   int           `koanf:"max_sessions"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EffectiveSchema returns Schema or the driver's default schema.
func (w *WarehouseConfig) EffectiveSchema() string {
	if w.Schema != "" {
		return w.Schema
	}
	if w.Driver == DriverDuckDB {
		return "main"
	}
	return "default"
}

// EffectiveSummaryTables returns SummaryTables or the default pair of an
// unqualified and a schema-qualified gold_track_summary.
func (w *WarehouseConfig) EffectiveSummaryTables() []string {
	if len(w.SummaryTables) > 0 {
		out := make([]string, len(w.SummaryTables))
		copy(out, w.SummaryTables)
		return out
	}
	return []string{"gold_track_summary", w.EffectiveSchema() + ".gold_track_summary"}
}
