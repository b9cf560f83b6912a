// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/mixtape/internal/metrics"
)

// Preflighter checks that the warehouse is reachable before expensive work.
type Preflighter interface {
	Preflight(ctx context.Context) error
}

// NoPreflight is used for in-process backends.
type NoPreflight struct{}

// Preflight always succeeds.
func (NoPreflight) Preflight(context.Context) error { return nil }

// NetworkPreflight resolves Host and opens (then closes) a TCP connection to
// Host:Port within Timeout.
type NetworkPreflight struct {
	Host    string
	Port    int
	Timeout time.Duration

	// Resolver and Dial default to net.DefaultResolver and a net.Dialer.
	Resolver *net.Resolver
	Dial     func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewNetworkPreflight returns a preflight for host:443.
func NewNetworkPreflight(host string, timeout time.Duration) *NetworkPreflight {
	return &NetworkPreflight{Host: host, Port: 443, Timeout: timeout}
}

// Preflight implements Preflighter.
func (p *NetworkPreflight) Preflight(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if _, err := resolver.LookupHost(ctx, p.Host); err != nil {
		metrics.WarehousePreflightFailures.WithLabelValues("resolve").Inc()
		return &ConnectivityError{Host: p.Host, Op: "resolve", Err: err}
	}

	dial := p.Dial
	if dial == nil {
		dialer := &net.Dialer{}
		dial = dialer.DialContext
	}
	address := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	conn, err := dial(ctx, "tcp", address)
	if err != nil {
		metrics.WarehousePreflightFailures.WithLabelValues("dial").Inc()
		return &ConnectivityError{Host: address, Op: "dial", Err: err}
	}
	_ = conn.Close()
	return nil
}
