// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/recommend"
)

type sessionContextKey struct{}

// SessionInfo is the body of POST /sessions.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// InputsResult is the body of PUT /sessions/{id}/inputs.
type InputsResult struct {
	SessionID  string              `json:"session_id"`
	Inputs     recommend.Selection `json:"inputs"`
	RunCleared bool                `json:"run_cleared"`
}

// sessionContext loads the session named by {id} and tags the logging
// context with it. Unknown and expired sessions get a 404.
func (h *Handler) sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, err := h.sessions.Get(id)
		if err != nil {
			respondFailure(w, r, err)
			return
		}

		ctx := logging.ContextWithSessionID(r.Context(), s.ID)
		ctx = context.WithValue(ctx, sessionContextKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *recommend.Session {
	s, _ := r.Context().Value(sessionContextKey{}).(*recommend.Session)
	return s
}

// CreateSession starts a session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, err := h.sessions.Create()
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+s.ID)
	respondSuccess(w, r, http.StatusCreated, SessionInfo{SessionID: s.ID, CreatedAt: s.CreatedAt()}, start, false)
}

// DeleteSession ends a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := sessionFrom(r)
	h.sessions.Delete(s.ID)
	respondSuccess(w, r, http.StatusOK, map[string]string{"session_id": s.ID}, start, false)
}

// SetInputs stores the session's seed selection. Different inputs discard
// the current run.
func (h *Handler) SetInputs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := sessionFrom(r)

	var req inputsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}
	req.Provenance = strings.ToLower(strings.TrimSpace(req.Provenance))
	if err := validate(&req); err != nil {
		respondFailure(w, r, err)
		return
	}

	sel := req.selection()
	cleared := s.SetInputs(sel)
	respondSuccess(w, r, http.StatusOK, InputsResult{SessionID: s.ID, Inputs: sel, RunCleared: cleared}, start, false)
}

// Generate computes the session's current run.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	run, err := h.engine.Generate(r.Context(), sessionFrom(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, run, start, run.Cached)
}

// CurrentRun returns the session's current run.
func (h *Handler) CurrentRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	run, err := sessionFrom(r).CurrentRun()
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, run, start, run.Cached)
}

// Explain returns the co-occurrence evidence of the current run with the
// breakdown of ?candidate= (default: the top recommendation).
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	candidate := strings.TrimSpace(r.URL.Query().Get("candidate"))

	x, err := h.engine.Explain(r.Context(), sessionFrom(r), candidate)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, x, start, false)
}

// Quality reports on the current run. ?relevant= is a comma-separated list
// of held-out tracks for precision@k; ?k= defaults to the run length.
func (h *Handler) Quality(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, err := intParam(r, "k")
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	req := qualityRequest{
		Relevant: parseCommaSeparated(r.URL.Query().Get("relevant")),
		K:        k,
	}
	if err := validate(&req); err != nil {
		respondFailure(w, r, err)
		return
	}

	report, err := h.engine.Quality(r.Context(), sessionFrom(r), req.Relevant, req.K)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, report, start, false)
}
