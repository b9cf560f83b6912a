// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mixtape/internal/catalog"
	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/database"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/warehouse"
)

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

type failingPreflight struct{}

func (failingPreflight) Preflight(context.Context) error {
	return &warehouse.ConnectivityError{Host: "warehouse.invalid", Op: "resolve", Err: errors.New("no such host")}
}

type testServer struct {
	handler  http.Handler
	sessions *recommend.SessionStore
}

type serverOptions struct {
	preflight warehouse.Preflighter
	security  *ChiMiddlewareConfig
}

func testConfig() *config.Config {
	return &config.Config{
		Warehouse: config.WarehouseConfig{Driver: config.DriverDuckDB, DuckDBPath: ":memory:"},
		Recommend: config.RecommendConfig{
			SearchLimit:            25,
			ArtistSearchLimit:      40,
			CoOccurrencePairsLimit: 100,
		},
	}
}

// Scenario data: P1:{A,C}, P2:{B,C}, P3:{A,B,D}.
func setupServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	cfg := testConfig()
	db, err := database.New(&cfg.Warehouse)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = db.Load(context.Background(), database.Dataset{
		Tracks: []database.Track{
			{URI: "spotify:track:A", Title: "Alpha", Artist: "Ann"},
			{URI: "spotify:track:B", Title: "Beta", Artist: "Bob"},
			{URI: "spotify:track:C", Title: "Gamma", Artist: "Ann"},
			{URI: "spotify:track:D", Title: "Delta", Artist: ""},
		},
		Playlists: []database.Playlist{
			{ID: "P1", Name: "Morning Mix", Tracks: []string{"spotify:track:A", "spotify:track:C"}},
			{ID: "P2", Name: "Evening Mix", Tracks: []string{"spotify:track:B", "spotify:track:C"}},
			{ID: "P3", Name: "Road Trip", Tracks: []string{"spotify:track:A", "spotify:track:B", "spotify:track:D"}},
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	logger := logging.NewTestLogger(io.Discard)
	exec := warehouse.NewSQLExecutor(db.Conn(), warehouse.SQLOptions{MaxConcurrent: 4}, logger)
	repo := catalog.New(exec, db.Tables())

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.Dependencies{
		Catalog:   repo,
		Executor:  exec,
		Tables:    db.Tables(),
		Preflight: opts.preflight,
	}, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	sessions := recommend.NewSessionStore(time.Hour, 100, time.Now)
	h, err := NewHandler(Dependencies{
		Engine:    engine,
		Catalog:   repo,
		Sessions:  sessions,
		Warehouse: Warehouse{Driver: config.DriverDuckDB, Executor: exec, Preflight: opts.preflight},
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	security := opts.security
	if security == nil {
		security = DefaultChiMiddlewareConfig()
		security.RateLimitDisabled = true
	}
	router := NewRouter(h, NewChiMiddleware(security), 10*time.Second)
	return &testServer{handler: router.SetupChi(), sessions: sessions}
}

// do sends a request and decodes the envelope.
func (s *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

// data decodes the envelope payload into v.
func data(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectError(t *testing.T, status int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Errorf("status = %d, want %d (body error %+v)", status, wantStatus, env.Error)
	}
	if env.Status != "error" || env.Error == nil || env.Error.Code != wantCode {
		t.Errorf("error = %+v, want code %s", env.Error, wantCode)
	}
}

func uris(rows []models.RecommendationRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.URI
	}
	return out
}
