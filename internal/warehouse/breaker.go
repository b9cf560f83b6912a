// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/metrics"
)

// BreakerSettings configures NewBreakerExecutor.
type BreakerSettings struct {
	Name string

	// ConsecutiveFailures opens the breaker. Default 5.
	ConsecutiveFailures uint32

	// Timeout is how long the breaker stays open before a half-open trial request. Default 30s.
	Timeout time.Duration
}

// BreakerExecutor stops sending queries to a warehouse that keeps failing to
// connect. Only connectivity failures count against the breaker; a query
// the warehouse rejects says nothing about its availability.
type BreakerExecutor struct {
	next Executor
	cb   *gobreaker.CircuitBreaker[*ResultSet]
	name string
}

// NewBreakerExecutor wraps next.
func NewBreakerExecutor(next Executor, settings BreakerSettings) *BreakerExecutor {
	if settings.Name == "" {
		settings.Name = "warehouse"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)

	threshold := settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker[*ResultSet](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsConnectivity(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerExecutor{next: next, cb: cb, name: settings.Name}
}

// Query implements Executor.
func (b *BreakerExecutor) Query(ctx context.Context, stmt Statement) (*ResultSet, error) {
	rs, err := b.cb.Execute(func() (*ResultSet, error) {
		return b.next.Query(ctx, stmt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, &ConnectivityError{Op: "breaker", Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return rs, nil
}

// State returns the breaker state name: closed, half-open or open.
func (b *BreakerExecutor) State() string {
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
