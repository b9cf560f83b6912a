// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/middleware"
)

// Router builds the HTTP route tree.
type Router struct {
	handler        *Handler
	chiMiddleware  *ChiMiddleware
	requestTimeout time.Duration
}

// NewRouter creates a router. A zero requestTimeout disables the
// per-request deadline.
func NewRouter(handler *Handler, mw *ChiMiddleware, requestTimeout time.Duration) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:        handler,
		chiMiddleware:  mw,
		requestTimeout: requestTimeout,
	}
}

// SetupChi configures all routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logging.WithComponent("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	// Health endpoints are not rate limited so liveness checks keep working
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/warehouse", router.handler.HealthWarehouse)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.handler.performance.Middleware)
		r.Use(chimiddleware.Compress(5, "application/json"))
		if router.requestTimeout > 0 {
			r.Use(chimiddleware.Timeout(router.requestTimeout))
		}

		r.Get("/stats", router.handler.Stats)

		r.Get("/catalog/stats", router.handler.CatalogStats)
		r.Get("/catalog/top-artists", router.handler.TopArtists)

		r.Get("/search/tracks", router.handler.SearchTracks)
		r.Get("/search/artists", router.handler.SearchArtists)
		r.Get("/search/playlists", router.handler.SearchPlaylists)

		r.Get("/tracks/{uri}/cooccurrence", router.handler.TrackCoOccurrence)

		r.Post("/recommendations", router.handler.Recommendations)

		r.Post("/sessions", router.handler.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(router.handler.sessionContext)
			r.Delete("/", router.handler.DeleteSession)
			r.Put("/inputs", router.handler.SetInputs)
			r.Post("/generate", router.handler.Generate)
			r.Get("/run", router.handler.CurrentRun)
			r.Get("/explain", router.handler.Explain)
			r.Get("/quality", router.handler.Quality)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
