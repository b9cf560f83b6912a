// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/recommend"
	"github.com/tomtom215/mixtape/internal/validation"
	"github.com/tomtom215/mixtape/internal/warehouse"
)

// Error codes for API responses.
const (
	ErrCodeValidation       = validation.CodeValidation
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInputsChanged    = "INPUTS_CHANGED"
	ErrCodeTooManySessions  = "TOO_MANY_SESSIONS"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeConnectivity     = "CONNECTIVITY_ERROR"
	ErrCodeQuery            = "QUERY_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// classifyError maps an engine, warehouse or validation error to its HTTP
// status and error body.
func classifyError(err error) (int, *models.APIError) {
	var (
		ve   *recommend.ValidationError
		rve  *validation.RequestValidationError
		ce   *config.ConfigurationError
		conn *warehouse.ConnectivityError
		qe   *warehouse.QueryExecutionError
	)

	switch {
	case errors.As(err, &rve):
		return http.StatusBadRequest, rve.ToAPIError()

	case errors.As(err, &ve):
		apiErr := &models.APIError{Code: ErrCodeValidation, Message: ve.Error()}
		if ve.Field != "" {
			apiErr.Details = map[string]interface{}{"field": ve.Field}
		}
		return http.StatusBadRequest, apiErr

	case errors.Is(err, recommend.ErrNoInputs):
		return http.StatusBadRequest, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}

	case errors.Is(err, recommend.ErrSessionNotFound), errors.Is(err, recommend.ErrNoRun):
		return http.StatusNotFound, &models.APIError{Code: ErrCodeNotFound, Message: err.Error()}

	case errors.Is(err, recommend.ErrInputsChanged):
		return http.StatusConflict, &models.APIError{Code: ErrCodeInputsChanged, Message: err.Error()}

	case errors.Is(err, recommend.ErrTooManySessions):
		return http.StatusServiceUnavailable, &models.APIError{Code: ErrCodeTooManySessions, Message: err.Error()}

	case errors.As(err, &ce):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeConfiguration,
			Message: ce.Error(),
			Details: map[string]interface{}{"missing": ce.Missing},
		}

	case errors.As(err, &conn):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeConnectivity,
			Message: "warehouse unreachable",
			Details: map[string]interface{}{"host": conn.Host, "stage": conn.Op},
		}

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &models.APIError{Code: ErrCodeTimeout, Message: "request timed out"}

	case errors.As(err, &qe):
		return http.StatusBadGateway, &models.APIError{
			Code:    ErrCodeQuery,
			Message: qe.Error(),
			Details: map[string]interface{}{"operation": qe.Operation},
		}

	default:
		return http.StatusInternalServerError, &models.APIError{Code: ErrCodeInternal, Message: "internal server error"}
	}
}
