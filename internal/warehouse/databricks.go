// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"database/sql"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"

	"github.com/tomtom215/mixtape/internal/config"
)

// OpenDatabricks opens a database/sql handle to a Databricks SQL warehouse.
// No connection is made until the first query.
func OpenDatabricks(cfg *config.WarehouseConfig) (*sql.DB, error) {
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		return nil, &config.ConfigurationError{Missing: missing}
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.ServerHostname),
		dbsql.WithPort(443),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.Token),
		dbsql.WithTimeout(cfg.QueryTimeout),
		dbsql.WithUserAgentEntry("mixtape"),
	)
	if err != nil {
		return nil, fmt.Errorf("create databricks connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxConcurrentQueries)
	db.SetMaxIdleConns(cfg.MaxConcurrentQueries)
	return db, nil
}
