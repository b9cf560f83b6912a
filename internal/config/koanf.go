// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mixtape/config.yaml",
	"/etc/mixtape/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			Driver:               DriverDatabricks,
			DuckDBPath:           ":memory:",
			ConnectTimeout:       3 * time.Second,
			QueryTimeout:         60 * time.Second,
			MaxConcurrentQueries: 4,
			QueriesPerSecond:     20,
			QueryBurst:           10,
			BreakerFailures:      5,
			BreakerTimeout:       30 * time.Second,
		},
		Recommend: RecommendConfig{
			CacheTTL:               15 * time.Minute,
			CacheMaxEntries:        1000,
			DefaultModel:           "co-occurrence",
			DefaultTopK:            10,
			MaxTopK:                50,
			MaxExplainSeeds:        8,
			MaxExplainCandidates:   20,
			ArtistSeedDefault:      5,
			SearchLimit:            25,
			ArtistSearchLimit:      40,
			CoOccurrencePairsLimit: 100,
		},
		Session: SessionConfig{
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 5 * time.Minute,
			MaxSessions:   10000,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			RequestTimeout:  75 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the discovered config file and
// the environment, then validates it.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DATABRICKS_TOKEN -> warehouse.token, LOG_LEVEL -> logging.level
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"warehouse_driver":                 "warehouse.driver",
	"databricks_server_hostname":       "warehouse.server_hostname",
	"databricks_http_path":             "warehouse.http_path",
	"databricks_token":                 "warehouse.token",
	"warehouse_schema":                 "warehouse.schema",
	"warehouse_summary_tables":         "warehouse.summary_tables",
	"duckdb_path":                      "warehouse.duckdb_path",
	"seed_demo_data":                   "warehouse.seed_demo_data",
	"summary_refresh_interval":         "warehouse.summary_refresh_interval",
	"warehouse_connect_timeout":        "warehouse.connect_timeout",
	"warehouse_query_timeout":          "warehouse.query_timeout",
	"warehouse_max_concurrent_queries": "warehouse.max_concurrent_queries",
	"warehouse_queries_per_second":     "warehouse.queries_per_second",
	"warehouse_query_burst":            "warehouse.query_burst",
	"warehouse_breaker_failures":       "warehouse.breaker_failures",
	"warehouse_breaker_timeout":        "warehouse.breaker_timeout",

	"recommend_cache_ttl":              "recommend.cache_ttl",
	"recommend_cache_max_entries":      "recommend.cache_max_entries",
	"recommend_default_model":          "recommend.default_model",
	"recommend_default_top_k":          "recommend.default_top_k",
	"recommend_max_top_k":              "recommend.max_top_k",
	"recommend_max_explain_seeds":      "recommend.max_explain_seeds",
	"recommend_max_explain_candidates": "recommend.max_explain_candidates",
	"recommend_artist_seed_default":    "recommend.artist_seed_default",
	"recommend_search_limit":           "recommend.search_limit",

	"session_idle_timeout":   "session.idle_timeout",
	"session_sweep_interval": "session.sweep_interval",
	"session_max_sessions":   "session.max_sessions",

	"http_host":               "server.host",
	"http_port":               "server.port",
	"http_read_timeout":       "server.read_timeout",
	"http_write_timeout":      "server.write_timeout",
	"http_request_timeout":    "server.request_timeout",
	"http_shutdown_timeout":   "server.shutdown_timeout",
	"cors_origins":            "security.cors_origins",
	"disable_rate_limit":      "security.rate_limit_disabled",
	"rate_limit_requests":     "security.rate_limit_requests",
	"rate_limit_window":       "security.rate_limit_window",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
