// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func listenLocal(t *testing.T) (*net.TCPListener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	tcp := ln.(*net.TCPListener)
	return tcp, tcp.Addr().(*net.TCPAddr).Port
}

func TestNetworkPreflight_Success(t *testing.T) {
	ln, port := listenLocal(t)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	p := &NetworkPreflight{Host: "127.0.0.1", Port: port, Timeout: time.Second}
	if err := p.Preflight(context.Background()); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
}

func TestNetworkPreflight_DialFailure(t *testing.T) {
	ln, port := listenLocal(t)
	_ = ln.Close()

	p := &NetworkPreflight{Host: "127.0.0.1", Port: port, Timeout: time.Second}
	err := p.Preflight(context.Background())

	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if ce.Op != "dial" {
		t.Errorf("Op = %q, want dial", ce.Op)
	}
}

func TestNetworkPreflight_ResolveFailure(t *testing.T) {
	p := &NetworkPreflight{
		Host:    "warehouse.invalid",
		Port:    443,
		Timeout: time.Second,
		Resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(context.Context, string, string) (net.Conn, error) {
				return nil, errors.New("dns unavailable")
			},
		},
		Dial: func(context.Context, string, string) (net.Conn, error) {
			t.Error("dial must not run after a resolve failure")
			return nil, errors.New("unexpected")
		},
	}

	err := p.Preflight(context.Background())
	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if ce.Op != "resolve" || ce.Host != "warehouse.invalid" {
		t.Errorf("got Op=%q Host=%q, want resolve warehouse.invalid", ce.Op, ce.Host)
	}
}

func TestNoPreflight(t *testing.T) {
	if err := (NoPreflight{}).Preflight(context.Background()); err != nil {
		t.Errorf("NoPreflight returned %v", err)
	}
}
