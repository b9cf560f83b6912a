// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/middleware"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/warehouse"
)

// CatalogReader is the catalog surface the search and browse endpoints use.
type CatalogReader interface {
	SearchTracks(ctx context.Context, term string, limit int) ([]models.Track, error)
	ArtistTopTracks(ctx context.Context, term string, limit int) ([]models.ScoredTrack, error)
	SearchPlaylists(ctx context.Context, term string, limit int) ([]models.Playlist, error)
	Stats(ctx context.Context) (models.CatalogStats, error)
	TopArtists(ctx context.Context, limit int) ([]models.ArtistTrackCount, error)
	CoOccurrencePairs(ctx context.Context, seed string, limit int) ([]models.Neighbor, error)
}

// BreakerState reports the warehouse circuit breaker state.
type BreakerState interface {
	State() string
}

// Warehouse groups what the health endpoint checks.
type Warehouse struct {
	Driver    string
	Executor  warehouse.Executor
	Preflight warehouse.Preflighter
	Breaker   BreakerState
}

// Dependencies are the collaborators of a Handler.
type Dependencies struct {
	Engine      *recommend.Engine
	Catalog     CatalogReader
	Sessions    *recommend.SessionStore
	Warehouse   Warehouse
	Performance *middleware.PerformanceMonitor
	Config      *config.Config
}

// Handler implements the HTTP endpoints.
type Handler struct {
	engine      *recommend.Engine
	catalog     CatalogReader
	sessions    *recommend.SessionStore
	warehouse   Warehouse
	performance *middleware.PerformanceMonitor
	config      *config.Config
	startTime   time.Time
}

// NewHandler creates a handler. Engine, catalog, sessions and config are
// required.
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Engine == nil || deps.Catalog == nil || deps.Sessions == nil || deps.Config == nil {
		return nil, fmt.Errorf("engine, catalog, sessions and config are required")
	}
	if deps.Warehouse.Executor == nil {
		return nil, fmt.Errorf("warehouse executor is required")
	}
	if deps.Warehouse.Preflight == nil {
		deps.Warehouse.Preflight = warehouse.NoPreflight{}
	}
	if deps.Performance == nil {
		deps.Performance = middleware.NewPerformanceMonitor(1000, 0)
	}

	return &Handler{
		engine:      deps.Engine,
		catalog:     deps.Catalog,
		sessions:    deps.Sessions,
		warehouse:   deps.Warehouse,
		performance: deps.Performance,
		config:      deps.Config,
		startTime:   time.Now(),
	}, nil
}
