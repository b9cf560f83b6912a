// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"database/sql"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/logging"
)

// Open builds the full executor stack for cfg over db: throttled SQL
// execution behind a circuit breaker, plus the matching preflight.
func Open(db *sql.DB, cfg *config.WarehouseConfig) (*BreakerExecutor, Preflighter) {
	host := ""
	var preflight Preflighter = NoPreflight{}
	if cfg.Driver == config.DriverDatabricks {
		host = cfg.ServerHostname
		preflight = NewNetworkPreflight(cfg.ServerHostname, cfg.ConnectTimeout)
	}

	sqlExec := NewSQLExecutor(db, SQLOptions{
		Host:             host,
		QueryTimeout:     cfg.QueryTimeout,
		MaxConcurrent:    cfg.MaxConcurrentQueries,
		QueriesPerSecond: cfg.QueriesPerSecond,
		Burst:            cfg.QueryBurst,
	}, logging.Logger())

	exec := NewBreakerExecutor(sqlExec, BreakerSettings{
		Name:                cfg.Driver,
		ConsecutiveFailures: cfg.BreakerFailures,
		Timeout:             cfg.BreakerTimeout,
	})
	return exec, preflight
}
