// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"errors"
	"testing"
	"time"
)

func validDuckDBConfig() *Config {
	cfg := defaultConfig()
	cfg.Warehouse.Driver = DriverDuckDB
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "duckdb defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Warehouse.Driver = "postgres" }, wantErr: true},
		{name: "schema injection", mutate: func(c *Config) { c.Warehouse.Schema = "main; DROP TABLE x" }, wantErr: true},
		{name: "qualified summary table", mutate: func(c *Config) {
			c.Warehouse.SummaryTables = []string{"hive_metastore.default.gold_track_summary"}
		}},
		{name: "bad summary table", mutate: func(c *Config) { c.Warehouse.SummaryTables = []string{"gold summary"} }, wantErr: true},
		{name: "negative summary refresh", mutate: func(c *Config) { c.Warehouse.SummaryRefreshInterval = -time.Minute }, wantErr: true},
		{name: "default top_k above max", mutate: func(c *Config) { c.Recommend.DefaultTopK = 51 }, wantErr: true},
		{name: "unknown model", mutate: func(c *Config) { c.Recommend.DefaultModel = "matrix-factorization" }, wantErr: true},
		{name: "artist seed default out of range", mutate: func(c *Config) { c.Recommend.ArtistSeedDefault = 11 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "rate limit disabled skips checks", mutate: func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitRequests = 0
		}},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDuckDBConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	w := WarehouseConfig{Driver: DriverDatabricks}
	missing := w.MissingCredentials()
	if len(missing) != 3 {
		t.Fatalf("MissingCredentials() = %v, want all three", missing)
	}
	if missing[0] != EnvServerHostname || missing[1] != EnvHTTPPath || missing[2] != EnvToken {
		t.Errorf("unexpected order: %v", missing)
	}

	w.Driver = DriverDuckDB
	if got := w.MissingCredentials(); len(got) != 0 {
		t.Errorf("duckdb driver should need no credentials, got %v", got)
	}

	cfg := defaultConfig()
	err := cfg.Validate()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	want := "warehouse connection is not configured; missing: DATABRICKS_SERVER_HOSTNAME, DATABRICKS_HTTP_PATH, DATABRICKS_TOKEN"
	if cfgErr.Error() != want {
		t.Errorf("Error() = %q, want %q", cfgErr.Error(), want)
	}
}

func TestEffectiveSummaryTables(t *testing.T) {
	w := WarehouseConfig{Driver: DriverDatabricks}
	got := w.EffectiveSummaryTables()
	if len(got) != 2 || got[0] != "gold_track_summary" || got[1] != "default.gold_track_summary" {
		t.Errorf("EffectiveSummaryTables() = %v", got)
	}
}
