// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Environment names of the required Databricks connection parameters.
const (
	EnvServerHostname = "DATABRICKS_SERVER_HOSTNAME"
	EnvHTTPPath       = "DATABRICKS_HTTP_PATH"
	EnvToken          = "DATABRICKS_TOKEN"
)

// ConfigurationError reports required connection parameters that are not set.
// Nothing may be queried while it is outstanding.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "warehouse connection is not configured; missing: " + strings.Join(e.Missing, ", ")
}

// identifierPattern accepts table and schema names, optionally qualified by up
// to two dots (catalog.schema.table). They are interpolated into SQL, so
// nothing else is allowed.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// ValidIdentifier reports whether name is safe to use as a SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// MissingCredentials lists the Databricks parameters that are empty, in
// canonical order. It is always empty for the duckdb driver.
func (w *WarehouseConfig) MissingCredentials() []string {
	if w.Driver != DriverDatabricks {
		return nil
	}
	var missing []string
	if strings.TrimSpace(w.ServerHostname) == "" {
		missing = append(missing, EnvServerHostname)
	}
	if strings.TrimSpace(w.HTTPPath) == "" {
		missing = append(missing, EnvHTTPPath)
	}
	if strings.TrimSpace(w.Token) == "" {
		missing = append(missing, EnvToken)
	}
	return missing
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateWarehouse(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWarehouse() error {
	w := &c.Warehouse
	switch w.Driver {
	case DriverDatabricks:
		if missing := w.MissingCredentials(); len(missing) > 0 {
			return &ConfigurationError{Missing: missing}
		}
	case DriverDuckDB:
		if w.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required when WAREHOUSE_DRIVER=duckdb")
		}
	default:
		return fmt.Errorf("WAREHOUSE_DRIVER must be %q or %q, got %q", DriverDatabricks, DriverDuckDB, w.Driver)
	}

	if !ValidIdentifier(w.EffectiveSchema()) {
		return fmt.Errorf("WAREHOUSE_SCHEMA %q is not a valid identifier", w.EffectiveSchema())
	}
	for _, table := range w.EffectiveSummaryTables() {
		if !ValidIdentifier(table) {
			return fmt.Errorf("WAREHOUSE_SUMMARY_TABLES entry %q is not a valid identifier", table)
		}
	}
	if w.ConnectTimeout <= 0 {
		return fmt.Errorf("WAREHOUSE_CONNECT_TIMEOUT must be positive")
	}
	if w.QueryTimeout <= 0 {
		return fmt.Errorf("WAREHOUSE_QUERY_TIMEOUT must be positive")
	}
	if w.MaxConcurrentQueries < 1 {
		return fmt.Errorf("WAREHOUSE_MAX_CONCURRENT_QUERIES must be at least 1, got %d", w.MaxConcurrentQueries)
	}
	if w.QueriesPerSecond < 0 {
		return fmt.Errorf("WAREHOUSE_QUERIES_PER_SECOND must not be negative")
	}
	if w.SummaryRefreshInterval < 0 {
		return fmt.Errorf("SUMMARY_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.CacheTTL <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive")
	}
	if r.MaxTopK < 1 {
		return fmt.Errorf("RECOMMEND_MAX_TOP_K must be at least 1, got %d", r.MaxTopK)
	}
	if r.DefaultTopK < 1 || r.DefaultTopK > r.MaxTopK {
		return fmt.Errorf("RECOMMEND_DEFAULT_TOP_K must be between 1 and %d, got %d", r.MaxTopK, r.DefaultTopK)
	}
	switch strings.ToLower(r.DefaultModel) {
	case "co-occurrence", "popularity":
	default:
		return fmt.Errorf("RECOMMEND_DEFAULT_MODEL must be co-occurrence or popularity, got %q", r.DefaultModel)
	}
	if r.MaxExplainSeeds < 1 || r.MaxExplainCandidates < 1 {
		return fmt.Errorf("explanation bounds must be at least 1")
	}
	if r.ArtistSeedDefault < 1 || r.ArtistSeedDefault > 10 {
		return fmt.Errorf("RECOMMEND_ARTIST_SEED_DEFAULT must be between 1 and 10, got %d", r.ArtistSeedDefault)
	}
	if r.SearchLimit < 1 || r.ArtistSearchLimit < 1 || r.CoOccurrencePairsLimit < 1 {
		return fmt.Errorf("search limits must be at least 1")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("SESSION_MAX_SESSIONS must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 unless DISABLE_RATE_LIMIT=true")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a recognized level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
