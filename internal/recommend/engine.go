// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/mixtape/internal/cache"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/warehouse"
	"github.com/tomtom215/mixtape/internal/warehouse/query"
)

// Dependencies are the collaborators of an Engine.
type Dependencies struct {
	Catalog  Catalog
	Executor warehouse.Executor
	Tables   query.Tables

	// Preflight gates every computation that reaches the warehouse.
	// Nil means no preflight.
	Preflight warehouse.Preflighter

	// Now is the clock of the result cache. Defaults to time.Now.
	Now func() time.Time
}

// Engine resolves, scores, caches and explains recommendations.
// It is safe for concurrent use. The result cache is shared by every
// session; per-session state lives in Session.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog   Catalog
	resolver  *Resolver
	scorer    *Scorer
	preflight warehouse.Preflighter
	now       func() time.Time

	results *cache.Cache[[]models.RecommendationRow]
	flight  singleflight.Group

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests    int64   `json:"requests"`
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	Errors      int64   `json:"errors"`
	CachedKeys  int     `json:"cached_keys"`
	HitRate     float64 `json:"hit_rate"`
}

// NewEngine creates an engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil || deps.Executor == nil {
		return nil, fmt.Errorf("catalog and executor are required")
	}
	if deps.Preflight == nil {
		deps.Preflight = warehouse.NoPreflight{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	logger = logger.With().Str("component", "recommend").Logger()
	return &Engine{
		config:    cfg,
		logger:    logger,
		catalog:   deps.Catalog,
		resolver:  NewResolver(deps.Catalog, cfg.ArtistSeedDefault),
		scorer:    NewScorer(deps.Executor, deps.Tables, cfg.SummaryTables, logger),
		preflight: deps.Preflight,
		now:       deps.Now,
		results: cache.New[[]models.RecommendationRow](cache.Options{
			Name:       "recommendations",
			TTL:        cfg.CacheTTL,
			MaxEntries: cfg.CacheMaxEntries,
			Now:        deps.Now,
		}),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// ResultCache returns the shared result cache, for the janitor.
func (e *Engine) ResultCache() *cache.Cache[[]models.RecommendationRow] {
	return e.results
}

// NormalizeRequest applies the default model and top_k and clamps top_k.
func (e *Engine) NormalizeRequest(req Request) (Request, error) {
	if req.Model == "" {
		req.Model = e.config.DefaultModel
	} else {
		m, ok := models.ParseModel(string(req.Model))
		if !ok {
			return req, newValidationError("model", "unknown model %q", req.Model)
		}
		req.Model = m
	}

	switch {
	case req.TopK < 0:
		return req, newValidationError("top_k", "must be positive")
	case req.TopK == 0:
		req.TopK = e.config.DefaultTopK
	case req.TopK > e.config.MaxTopK:
		req.TopK = e.config.MaxTopK
	}

	if req.SeedURIs == nil {
		req.SeedURIs = []string{}
	}
	return req, nil
}

// GetRecommendations returns the ranked recommendations for req, and whether
// they came from the cache. Identical requests within the cache TTL return
// identical rows without querying. A co-occurrence request with no seeds
// fails with a ValidationError before any query.
func (e *Engine) GetRecommendations(ctx context.Context, req Request) ([]models.RecommendationRow, bool, error) {
	return e.recommend(ctx, req, nil)
}

// recommend is GetRecommendations with an optional, already resolved seen
// set. Without one, the seen set is derived from req on a cache miss.
func (e *Engine) recommend(ctx context.Context, req Request, seen SeenSet) ([]models.RecommendationRow, bool, error) {
	e.requestCount.Add(1)

	req, err := e.NormalizeRequest(req)
	if err != nil {
		e.errorCount.Add(1)
		return nil, false, err
	}
	if req.Model.RequiresSeeds() && !req.usesPlaylist() && len(req.SeedURIs) == 0 {
		e.errorCount.Add(1)
		return nil, false, newValidationError("seeds", "%s requires at least one seed track", req.Model)
	}

	key := req.CacheKey()
	logger := e.requestLogger(ctx, req)

	if rows, ok := e.results.Get(key); ok {
		e.cacheHits.Add(1)
		logger.Debug().Int("rows", len(rows)).Msg("recommendation cache hit")
		return slices.Clone(rows), true, nil
	}
	e.cacheMisses.Add(1)
	logger.Debug().Msg("recommendation cache miss")

	// Joined callers share one computation detached from any single caller's
	// cancellation; each caller still stops waiting when its own ctx ends.
	ch := e.flight.DoChan(key, func() (interface{}, error) {
		return e.compute(context.WithoutCancel(ctx), req, seen, key)
	})
	select {
	case <-ctx.Done():
		e.errorCount.Add(1)
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			e.errorCount.Add(1)
			return nil, false, r.Err
		}
		return slices.Clone(r.Val.([]models.RecommendationRow)), false, nil
	}
}

// compute scores req, strips seen tracks and stores the result.
func (e *Engine) compute(ctx context.Context, req Request, seen SeenSet, key string) ([]models.RecommendationRow, error) {
	start := e.now()

	if err := e.preflight.Preflight(ctx); err != nil {
		return nil, err
	}

	rows, err := e.scorer.Score(ctx, req)
	if err != nil {
		return nil, err
	}

	if seen == nil {
		seen, err = e.seenFor(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	rows = Rerank(rows, seen)

	e.results.Set(key, rows)
	metrics.RecommendationsGenerated.WithLabelValues(string(req.Model)).Inc()

	logger := e.requestLogger(ctx, req)
	logger.Debug().
		Int("rows", len(rows)).
		Dur("duration", e.now().Sub(start)).
		Msg("recommendations computed")
	return rows, nil
}

// seenFor derives the seen set of a bare request.
func (e *Engine) seenFor(ctx context.Context, req Request) (SeenSet, error) {
	if !req.usesPlaylist() {
		return NewSeenSet(req.SeedURIs), nil
	}
	tracks, err := e.catalog.PlaylistTracks(ctx, req.PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("load playlist tracks: %w", err)
	}
	return NewSeenSet(tracks), nil
}

// Generate resolves the session's inputs, computes (or reuses) their
// recommendations and replaces the session's CurrentRun. If the inputs
// change while generating, the result is discarded with ErrInputsChanged.
func (e *Engine) Generate(ctx context.Context, s *Session) (*CurrentRun, error) {
	sel, version, ok := s.Inputs()
	if !ok {
		return nil, ErrNoInputs
	}

	model := sel.Model
	if model == "" {
		model = e.config.DefaultModel
	} else if m, ok := models.ParseModel(string(model)); ok {
		model = m
	} else {
		return nil, newValidationError("model", "unknown model %q", sel.Model)
	}

	res, err := e.resolver.Resolve(ctx, sel, model)
	if err != nil {
		return nil, err
	}

	req := Request{SeedURIs: res.Seeds.URIs, Model: model, TopK: sel.TopK}
	if sel.Provenance == models.ProvenancePlaylist {
		req = Request{PlaylistID: sel.PlaylistID, Model: model, TopK: sel.TopK}
	}
	req, err = e.NormalizeRequest(req)
	if err != nil {
		return nil, err
	}

	rows, cached, err := e.recommend(ctx, req, res.Seen)
	if err != nil {
		return nil, err
	}

	run := &CurrentRun{
		Inputs:          sel,
		SeedURIs:        req.SeedURIs,
		PlaylistID:      req.PlaylistID,
		Model:           req.Model,
		TopK:            req.TopK,
		SeenSet:         res.Seen.Sorted(),
		Recommendations: rows,
		ExplainSeeds:    res.Seeds.Head(e.config.MaxExplainSeeds),
		Cached:          cached,
		GeneratedAt:     e.now(),
	}
	if !s.storeRun(run, version) {
		return nil, ErrInputsChanged
	}

	logging.Ctx(ctx).Info().
		Str("session_id", s.ID).
		Str("provenance", string(sel.Provenance)).
		Str("model", string(req.Model)).
		Int("seeds", res.Seeds.Len()).
		Int("recommendations", len(run.Recommendations)).
		Bool("cached", cached).
		Msg("recommendations generated")
	return run, nil
}

// GetStats returns engine counters.
func (e *Engine) GetStats() Stats {
	cs := e.results.GetStats()
	return Stats{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Errors:      e.errorCount.Load(),
		CachedKeys:  int(cs.TotalKeys),
		HitRate:     e.results.HitRate(),
	}
}

func (e *Engine) requestLogger(ctx context.Context, req Request) zerolog.Logger {
	l := e.logger.With().
		Str("model", string(req.Model)).
		Int("top_k", req.TopK).
		Int("seeds", len(req.SeedURIs))
	if req.PlaylistID != "" {
		l = l.Str("playlist_id", req.PlaylistID)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		l = l.Str("request_id", id)
	}
	return l.Logger()
}
