// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package main is the entry point for the Mixtape recommendation server.

Mixtape recommends tracks for a playlist from a playlist↔track warehouse.
Seeds come from explicit tracks, an artist's most-placed tracks, or an
existing playlist. Candidates are scored by playlist co-occurrence or by
global popularity, then explained and evaluated per session.

# Startup

 1. Configuration: koanf defaults, then config.yaml, then environment
 2. Logging: zerolog from LOG_LEVEL / LOG_FORMAT
 3. Warehouse: Databricks SQL (default) or a local DuckDB file
 4. Engine: catalog repository, scorer, shared result cache
 5. Supervisor tree: data layer (cache janitor, session sweeper, summary
    refresh) and api layer (HTTP server)

Missing Databricks credentials stop the process before anything is queried
and the log names every missing variable.

# Configuration

Databricks:

	export DATABRICKS_SERVER_HOSTNAME=adb-1234.5.azuredatabricks.net
	export DATABRICKS_HTTP_PATH=/sql/1.0/warehouses/abc123
	export DATABRICKS_TOKEN=dapi...
	./mixtape

Local DuckDB with the demo catalog:

	export WAREHOUSE_DRIVER=duckdb
	export DUCKDB_PATH=./data/mixtape.duckdb
	export SEED_DEMO_DATA=true
	export SUMMARY_REFRESH_INTERVAL=1h
	./mixtape

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to HTTP_SHUTDOWN_TIMEOUT and the warehouse pool is closed last.
*/
package main
