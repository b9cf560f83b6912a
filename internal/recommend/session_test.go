// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/models"
)

func TestSession_SetInputs(t *testing.T) {
	s := NewSession(time.Now())
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("session id %q is not a UUID: %v", s.ID, err)
	}
	if _, _, ok := s.Inputs(); ok {
		t.Error("new session has inputs")
	}

	sel := Selection{Provenance: models.ProvenanceTrack, TrackURIs: []string{"a"}, TopK: 5}
	if s.SetInputs(sel) {
		t.Error("first SetInputs reported a cleared run")
	}
	_, v1, _ := s.Inputs()

	if !s.storeRun(&CurrentRun{Inputs: sel}, v1) {
		t.Fatal("storeRun rejected the current version")
	}

	// Same inputs keep the run.
	if s.SetInputs(sel) {
		t.Error("identical inputs cleared the run")
	}
	if _, err := s.CurrentRun(); err != nil {
		t.Errorf("run lost after identical inputs: %v", err)
	}

	changed := sel
	changed.TopK = 6
	if !s.SetInputs(changed) {
		t.Error("changed inputs did not clear the run")
	}
	if _, err := s.CurrentRun(); !errors.Is(err, ErrNoRun) {
		t.Errorf("CurrentRun() err = %v, want ErrNoRun", err)
	}

	// A run computed for the old inputs is discarded.
	if s.storeRun(&CurrentRun{Inputs: sel}, v1) {
		t.Error("stale run stored after inputs changed")
	}
	got, v2, _ := s.Inputs()
	if v2 == v1 || !got.Equal(changed) {
		t.Errorf("inputs = %+v at version %d", got, v2)
	}
}

func TestSelection_Equal(t *testing.T) {
	base := Selection{Provenance: models.ProvenanceTrack, TrackURIs: []string{"a", "b"}, Model: models.ModelPopularity, TopK: 3}

	tests := []struct {
		name   string
		mutate func(*Selection)
		want   bool
	}{
		{"identical", func(*Selection) {}, true},
		{"track order", func(s *Selection) { s.TrackURIs = []string{"b", "a"} }, false},
		{"model", func(s *Selection) { s.Model = models.ModelCoOccurrence }, false},
		{"top_k", func(s *Selection) { s.TopK = 4 }, false},
		{"artist", func(s *Selection) { s.Artist = "x" }, false},
		{"provenance", func(s *Selection) { s.Provenance = models.ProvenanceArtist }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			other.TrackURIs = append([]string(nil), base.TrackURIs...)
			tt.mutate(&other)
			if got := base.Equal(other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionStore(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(time.Hour, 2, clock.Now)

	s1, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("third Create err = %v, want ErrTooManySessions", err)
	}

	got, err := store.Get(s1.ID)
	if err != nil || got != s1 {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := store.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrSessionNotFound", err)
	}

	// s1 stays active, the other goes idle.
	clock.Advance(40 * time.Minute)
	if _, err := store.Get(s1.ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(30 * time.Minute)

	if n := store.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	// A full store sweeps before refusing.
	if _, err := store.Create(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := store.Create(); err != nil {
		t.Errorf("Create after idle period: %v", err)
	}
	if _, err := store.Get(s1.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired session still served: %v", err)
	}

	store.Delete("missing")
}

func TestSessionStore_GetExpiresIdle(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(time.Minute, 0, clock.Now)

	s, _ := store.Create()
	clock.Advance(time.Minute)
	if _, err := store.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get idle session err = %v, want ErrSessionNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("idle session kept, Len() = %d", store.Len())
	}
}

func TestSessionSweeper_Serve(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(time.Minute, 0, clock.Now)
	if _, err := store.Create(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)

	sweeper := NewSessionSweeper(store, 5*time.Millisecond, logging.NewTestLogger(io.Discard))
	if sweeper.String() != "session-sweeper" {
		t.Errorf("String() = %q", sweeper.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not expire the idle session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
