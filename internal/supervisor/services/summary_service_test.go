// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*SummaryRefreshService)(nil)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh context has no deadline")
	}
	return c.err
}

func TestSummaryRefreshService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SummaryRefreshConfig
		err     error
		runFor  time.Duration
		wantMin int32
		wantMax int32
	}{
		{"startup only", SummaryRefreshConfig{RefreshOnStartup: true, Interval: time.Hour}, nil, 50 * time.Millisecond, 1, 1},
		{"no startup refresh", SummaryRefreshConfig{Interval: time.Hour}, nil, 50 * time.Millisecond, 0, 0},
		{"ticks", SummaryRefreshConfig{Interval: 20 * time.Millisecond}, nil, 150 * time.Millisecond, 2, 10},
		{"failures keep running", SummaryRefreshConfig{RefreshOnStartup: true, Interval: 20 * time.Millisecond}, errors.New("table locked"), 150 * time.Millisecond, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingRefresher{err: tt.err}
			svc := NewSummaryRefreshService(r, tt.cfg, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), tt.runFor)
			defer cancel()

			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
			}
			if got := r.calls.Load(); got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Refresh called %d times, want %d..%d", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestRefreshFunc(t *testing.T) {
	called := false
	svc := NewSummaryRefreshService(RefreshFunc(func(context.Context) error {
		called = true
		return nil
	}), SummaryRefreshConfig{Interval: time.Hour}, zerolog.Nop())

	svc.refresh(context.Background())
	if !called {
		t.Error("RefreshFunc not invoked")
	}
	if svc.String() != "summary-refresh" {
		t.Errorf("String() = %q", svc.String())
	}
	if svc.config.Timeout != 10*time.Minute {
		t.Errorf("default timeout = %v", svc.config.Timeout)
	}
}
