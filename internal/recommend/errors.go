// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"errors"
	"fmt"
)

// ValidationError reports a request the engine refuses before querying.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrSessionNotFound is returned for unknown or swept session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoRun is returned when a session has no current run to read.
	ErrNoRun = errors.New("no recommendations generated for the current inputs")

	// ErrNoInputs is returned when generating for a session without inputs.
	ErrNoInputs = errors.New("session has no inputs")

	// ErrInputsChanged is returned when a session's inputs changed while a
	// generation for the previous inputs was running. The result is discarded.
	ErrInputsChanged = errors.New("session inputs changed during generation")

	// ErrTooManySessions is returned when the session store is full.
	ErrTooManySessions = errors.New("too many active sessions")
)
