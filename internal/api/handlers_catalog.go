// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mixtape/internal/validation"
)

// defaultTopArtists is the top-artists limit when none is given.
const defaultTopArtists = 10

// parseSearch reads q and limit, applying defaultLimit.
func parseSearch(r *http.Request, defaultLimit int) (searchRequest, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return searchRequest{}, err
	}
	req := searchRequest{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: limit,
	}
	if err := validate(&req); err != nil {
		return req, err
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	return req, nil
}

// parseLimit reads an optional limit, applying defaultLimit.
func parseLimit(r *http.Request, defaultLimit int) (int, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return 0, err
	}
	req := limitRequest{Limit: limit}
	if err := validate(&req); err != nil {
		return 0, err
	}
	if req.Limit == 0 {
		return defaultLimit, nil
	}
	return req.Limit, nil
}

// CatalogStats returns distinct track, playlist and artist counts.
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, stats, start, false)
}

// TopArtists returns artists by distinct track count.
func (h *Handler) TopArtists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := parseLimit(r, defaultTopArtists)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	artists, err := h.catalog.TopArtists(r.Context(), limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, artists, start, false)
}

// SearchTracks finds tracks by partial title.
func (h *Handler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := parseSearch(r, h.config.Recommend.SearchLimit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	tracks, err := h.catalog.SearchTracks(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, tracks, start, false)
}

// SearchArtists returns the tracks of matching artists by playlist count.
func (h *Handler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := parseSearch(r, h.config.Recommend.ArtistSearchLimit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	tracks, err := h.catalog.ArtistTopTracks(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, tracks, start, false)
}

// SearchPlaylists finds playlists by partial name.
func (h *Handler) SearchPlaylists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := parseSearch(r, h.config.Recommend.SearchLimit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	playlists, err := h.catalog.SearchPlaylists(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, playlists, start, false)
}

// TrackCoOccurrence returns the tracks sharing playlists with {uri}. The
// URI is path-escaped by clients since track URIs contain colons.
func (h *Handler) TrackCoOccurrence(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	uri, err := url.PathUnescape(chi.URLParam(r, "uri"))
	if err != nil || strings.TrimSpace(uri) == "" {
		respondFailure(w, r, validation.NewRequestValidationError("uri", "trackuri", "uri must be a path-escaped track URI", chi.URLParam(r, "uri")))
		return
	}
	limit, err := parseLimit(r, h.config.Recommend.CoOccurrencePairsLimit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	pairs, err := h.catalog.CoOccurrencePairs(r.Context(), uri, limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"track_uri": uri,
		"pairs":     pairs,
	}, start, false)
}
