// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mixtape/internal/models"
)

// RecommendationsResult is the body of POST /recommendations.
type RecommendationsResult struct {
	Model           models.Model               `json:"model"`
	TopK            int                        `json:"top_k"`
	Recommendations []models.RecommendationRow `json:"recommendations"`
}

// Recommendations scores a stateless request. Requests are normalized the
// same way as session runs and share their cache.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}
	if err := validate(&req); err != nil {
		respondFailure(w, r, err)
		return
	}

	normalized, err := h.engine.NormalizeRequest(req.request())
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	rows, cached, err := h.engine.GetRecommendations(r.Context(), normalized)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, RecommendationsResult{
		Model:           normalized.Model,
		TopK:            normalized.TopK,
		Recommendations: rows,
	}, start, cached)
}
