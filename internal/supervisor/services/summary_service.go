// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher rebuilds derived warehouse data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// SummaryRefreshConfig controls when the track summary is rebuilt.
type SummaryRefreshConfig struct {
	// RefreshOnStartup rebuilds once before the first tick.
	RefreshOnStartup bool

	// Interval between rebuilds. Must be positive.
	Interval time.Duration

	// Timeout bounds a single rebuild. Zero means 10 minutes.
	Timeout time.Duration
}

// SummaryRefreshService periodically rebuilds the per-track popularity
// summary so the popularity model keeps up with catalog loads.
type SummaryRefreshService struct {
	refresher Refresher
	config    SummaryRefreshConfig
	logger    zerolog.Logger
}

// NewSummaryRefreshService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewSummaryRefreshService(refresher Refresher, cfg SummaryRefreshConfig, logger zerolog.Logger) *SummaryRefreshService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &SummaryRefreshService{
		refresher: refresher,
		config:    cfg,
		logger:    logger.With().Str("service", "summary-refresh").Logger(),
	}
}

// Serve implements suture.Service. Failed rebuilds are logged and retried
// on the next tick; they never crash the service.
func (s *SummaryRefreshService) Serve(ctx context.Context) error {
	interval := s.config.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.logger.Info().
		Bool("refresh_on_startup", s.config.RefreshOnStartup).
		Dur("interval", interval).
		Msg("summary refresh service starting")

	if s.config.RefreshOnStartup {
		s.refresh(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("summary refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *SummaryRefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(refreshCtx); err != nil {
		s.logger.Warn().Err(err).Msg("track summary refresh failed")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("track summary refreshed")
}

func (s *SummaryRefreshService) String() string {
	return "summary-refresh"
}
