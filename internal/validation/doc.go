// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package validation validates API request structs with
// go-playground/validator v10.
//
// A single validator instance is shared (it caches struct metadata). Fields
// are reported under their JSON or query names, and failures convert to the
// VALIDATION_ERROR body of the API:
//
//	type generateRequest struct {
//	    Model string `json:"model" validate:"omitempty,oneof=co-occurrence popularity"`
//	    TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
//
// Beyond the built-in tags, "trackuri" accepts a non-blank identifier
// without control characters of at most MaxTrackURILength bytes.
package validation
