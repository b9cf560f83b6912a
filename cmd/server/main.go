// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/mixtape/internal/api"
	"github.com/tomtom215/mixtape/internal/cache"
	"github.com/tomtom215/mixtape/internal/catalog"
	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/database"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/middleware"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/supervisor"
	"github.com/tomtom215/mixtape/internal/supervisor/services"
	"github.com/tomtom215/mixtape/internal/warehouse"
	"github.com/tomtom215/mixtape/internal/warehouse/query"
)

// warehouseHandle is the opened warehouse: a database/sql pool plus, for the
// local driver, the DuckDB wrapper that can rebuild summaries.
type warehouseHandle struct {
	conn   *sql.DB
	tables query.Tables
	local  *database.DB
}

func (w *warehouseHandle) Close() error {
	if w.local != nil {
		return w.local.Close()
	}
	return w.conn.Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logging.Fatal().Strs("missing", cfgErr.Missing).Msg("Warehouse connection is not configured")
		}
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("driver", cfg.Warehouse.Driver).
		Str("schema", cfg.Warehouse.EffectiveSchema()).
		Strs("summary_tables", cfg.Warehouse.EffectiveSummaryTables()).
		Msg("Starting Mixtape")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wh, err := openWarehouse(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open warehouse")
	}
	defer func() {
		if err := wh.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing warehouse")
		}
	}()

	exec, preflight := warehouse.Open(wh.conn, &cfg.Warehouse)
	repo := catalog.New(exec, wh.tables)

	engine, err := recommend.NewEngine(recommend.ConfigFrom(cfg), recommend.Dependencies{
		Catalog:   repo,
		Executor:  exec,
		Tables:    wh.tables,
		Preflight: preflight,
	}, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	sessions := recommend.NewSessionStore(cfg.Session.IdleTimeout, cfg.Session.MaxSessions, nil)

	handler, err := api.NewHandler(api.Dependencies{
		Engine:   engine,
		Catalog:  repo,
		Sessions: sessions,
		Warehouse: api.Warehouse{
			Driver:    cfg.Warehouse.Driver,
			Executor:  exec,
			Preflight: preflight,
			Breaker:   exec,
		},
		Performance: middleware.NewPerformanceMonitor(1000, cfg.Server.RequestTimeout/2),
		Config:      cfg,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)), cfg.Server.RequestTimeout)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(cache.NewJanitor(engine.ResultCache(), cfg.Recommend.CacheTTL))
	tree.AddDataService(recommend.NewSessionSweeper(sessions, cfg.Session.SweepInterval, logging.WithComponent("sessions")))
	if wh.local != nil && cfg.Warehouse.SummaryRefreshInterval > 0 {
		tree.AddDataService(services.NewSummaryRefreshService(
			summaryRefresher(wh.local, cfg.Warehouse.EffectiveSummaryTables()[0], engine),
			services.SummaryRefreshConfig{Interval: cfg.Warehouse.SummaryRefreshInterval},
			logging.WithComponent("supervisor"),
		))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Mixtape stopped")
}

// openWarehouse opens the configured driver. The DuckDB driver optionally
// seeds the demo catalog.
func openWarehouse(ctx context.Context, cfg *config.Config) (*warehouseHandle, error) {
	switch cfg.Warehouse.Driver {
	case config.DriverDuckDB:
		db, err := database.New(&cfg.Warehouse)
		if err != nil {
			return nil, err
		}
		if cfg.Warehouse.SeedDemoData {
			logging.Info().Msg("Seeding demo catalog (SEED_DEMO_DATA=true)")
			if err := db.SeedDemoData(ctx, cfg.Warehouse.EffectiveSummaryTables()[0]); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("seed demo data: %w", err)
			}
		}
		return &warehouseHandle{conn: db.Conn(), tables: db.Tables(), local: db}, nil

	case config.DriverDatabricks:
		conn, err := warehouse.OpenDatabricks(&cfg.Warehouse)
		if err != nil {
			return nil, err
		}
		logging.Info().
			Str("host", cfg.Warehouse.ServerHostname).
			Str("http_path", cfg.Warehouse.HTTPPath).
			Msg("Databricks SQL warehouse configured")
		return &warehouseHandle{conn: conn, tables: query.NewTables(cfg.Warehouse.EffectiveSchema())}, nil

	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Warehouse.Driver)
	}
}

// summaryRefresher rebuilds the local popularity summary and drops cached
// results computed from the old one.
func summaryRefresher(db *database.DB, table string, engine *recommend.Engine) services.Refresher {
	return services.RefreshFunc(func(ctx context.Context) error {
		if err := db.RefreshTrackSummary(ctx, table); err != nil {
			return err
		}
		engine.ResultCache().Clear()
		return nil
	})
}
