// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/validation"
)

// maxBodyBytes bounds a JSON request body.
const maxBodyBytes = 1 << 20

// inputsRequest is the body of PUT /sessions/{id}/inputs.
type inputsRequest struct {
	Provenance string   `json:"provenance" validate:"required,oneof=track artist playlist"`
	TrackURIs  []string `json:"track_uris" validate:"max=200,dive,trackuri"`
	Artist     string   `json:"artist" validate:"required_if=Provenance artist,max=200"`
	ArtistTopN int      `json:"artist_top_n" validate:"omitempty,min=1,max=10"`
	PlaylistID string   `json:"playlist_id" validate:"required_if=Provenance playlist,max=512"`
	Model      string   `json:"model" validate:"omitempty,oneof=co-occurrence popularity"`
	TopK       int      `json:"top_k" validate:"omitempty,min=1,max=50"`
}

func (req *inputsRequest) selection() recommend.Selection {
	return recommend.Selection{
		Provenance: models.Provenance(req.Provenance),
		TrackURIs:  req.TrackURIs,
		Artist:     strings.TrimSpace(req.Artist),
		ArtistTopN: req.ArtistTopN,
		PlaylistID: strings.TrimSpace(req.PlaylistID),
		Model:      models.Model(req.Model),
		TopK:       req.TopK,
	}
}

// recommendRequest is the body of POST /recommendations.
type recommendRequest struct {
	SeedURIs   []string `json:"seed_uris" validate:"max=200,dive,trackuri"`
	PlaylistID string   `json:"playlist_id" validate:"max=512"`
	Model      string   `json:"model" validate:"omitempty,oneof=co-occurrence popularity"`
	TopK       int      `json:"top_k" validate:"omitempty,min=1,max=50"`
}

func (req *recommendRequest) request() recommend.Request {
	return recommend.Request{
		SeedURIs:   req.SeedURIs,
		PlaylistID: strings.TrimSpace(req.PlaylistID),
		Model:      models.Model(req.Model),
		TopK:       req.TopK,
	}
}

// searchRequest holds the query parameters of the search endpoints.
type searchRequest struct {
	Query string `query:"q" validate:"required,max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=200"`
}

// limitRequest holds a bare limit parameter.
type limitRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// qualityRequest holds the query parameters of GET /sessions/{id}/quality.
type qualityRequest struct {
	Relevant []string `query:"relevant" validate:"max=1000,dive,trackuri"`
	K        int      `query:"k" validate:"omitempty,min=1,max=50"`
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields are rejected.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return validation.NewRequestValidationError("body", "required", "request body is required", nil)
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.NewRequestValidationError("body", "required", "request body is required", nil)
		}
		return validation.NewRequestValidationError("body", "json", "invalid JSON body: "+err.Error(), nil)
	}
	return nil
}

// intParam parses an optional integer query parameter. A present but
// malformed value is a validation error rather than silently defaulted.
func intParam(r *http.Request, key string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, validation.NewRequestValidationError(key, "int", key+" must be an integer", value)
	}
	return n, nil
}

// parseCommaSeparated splits value on commas, dropping blank parts.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// validate runs struct validation, returning nil or the validation error.
func validate(v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}
