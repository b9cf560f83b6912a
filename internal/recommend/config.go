// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/models"
)

// MaxArtistTopN bounds artist seed resolution.
const MaxArtistTopN = 10

// Config contains the engine's tunables.
type Config struct {
	// CacheTTL is how long a computed result is reused.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the result cache. Zero means unbounded.
	CacheMaxEntries int

	// DefaultModel scores requests that name no model.
	DefaultModel models.Model

	// DefaultTopK applies when a request asks for 0 results; larger
	// requests are clamped to MaxTopK.
	DefaultTopK int
	MaxTopK     int

	// MaxExplainSeeds and MaxExplainCandidates bound the explanation matrix.
	MaxExplainSeeds      int
	MaxExplainCandidates int

	// ArtistSeedDefault is the artist seed count when a selection names none.
	ArtistSeedDefault int

	// SummaryTables are precomputed popularity tables tried in order before
	// aggregating the fact table.
	SummaryTables []string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:             15 * time.Minute,
		CacheMaxEntries:      1000,
		DefaultModel:         models.ModelCoOccurrence,
		DefaultTopK:          10,
		MaxTopK:              50,
		MaxExplainSeeds:      8,
		MaxExplainCandidates: 20,
		ArtistSeedDefault:    5,
		SummaryTables:        []string{"gold_track_summary"},
	}
}

// ConfigFrom derives the engine configuration from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	model, ok := models.ParseModel(cfg.Recommend.DefaultModel)
	if !ok {
		model = models.ModelCoOccurrence
	}
	return &Config{
		CacheTTL:             cfg.Recommend.CacheTTL,
		CacheMaxEntries:      cfg.Recommend.CacheMaxEntries,
		DefaultModel:         model,
		DefaultTopK:          cfg.Recommend.DefaultTopK,
		MaxTopK:              cfg.Recommend.MaxTopK,
		MaxExplainSeeds:      cfg.Recommend.MaxExplainSeeds,
		MaxExplainCandidates: cfg.Recommend.MaxExplainCandidates,
		ArtistSeedDefault:    cfg.Recommend.ArtistSeedDefault,
		SummaryTables:        cfg.Warehouse.EffectiveSummaryTables(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache max entries must be non-negative")
	}
	if c.MaxTopK < 1 {
		return fmt.Errorf("max top_k must be at least 1")
	}
	if c.DefaultTopK < 1 || c.DefaultTopK > c.MaxTopK {
		return fmt.Errorf("default top_k must be between 1 and %d", c.MaxTopK)
	}
	if c.MaxExplainSeeds < 1 || c.MaxExplainCandidates < 1 {
		return fmt.Errorf("explanation bounds must be at least 1")
	}
	if c.ArtistSeedDefault < 1 || c.ArtistSeedDefault > MaxArtistTopN {
		return fmt.Errorf("artist seed default must be between 1 and %d", MaxArtistTopN)
	}
	if c.DefaultModel != models.ModelCoOccurrence && c.DefaultModel != models.ModelPopularity {
		return fmt.Errorf("unknown default model %q", c.DefaultModel)
	}
	return nil
}
