// Package tts implements the line generation pipeline: a client for the
// synthesis boundary, the single-line generator, and the sequential batch
// engine that drives generation across an ordered set of lines.
package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying pipeline failures. Boundary responses are
// mapped onto these so callers can branch with errors.Is while the
// human-readable message stays the boundary's own wording.
var (
	// ErrValidation covers malformed text, voice identifiers, speed values
	// and credential formats. Validation failures never reach the network.
	ErrValidation = errors.New("validation failed")
	// ErrCredential covers 401 and 403 responses from the boundary.
	ErrCredential = errors.New("credential rejected")
	// ErrRateLimited covers 429 responses from the boundary.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrEmptyPayload is returned when the boundary reports success but the
	// body is empty.
	ErrEmptyPayload = errors.New("empty audio payload")
	// ErrNetwork covers transport failures: the call itself failed or the
	// payload could not be read.
	ErrNetwork = errors.New("network failure")
	// ErrBoundary covers every other non-success boundary response.
	ErrBoundary = errors.New("synthesis boundary error")
)

// Generic fallback message when the boundary provides none.
const msgGenerationFailed = "Failed to generate audio. Please try again."

// BoundaryError is a classified failure from the synthesis boundary. Its
// Error text is the boundary's own message when one was provided, so it can
// be attached to a line verbatim; Unwrap exposes the taxonomy sentinel.
type BoundaryError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// StatusCode is the HTTP status the boundary returned, zero when the
	// call never produced a response.
	StatusCode int
	// Message is the boundary's error message or a generic fallback.
	Message string
}

// Error returns the user-facing message.
func (e *BoundaryError) Error() string {
	return e.Message
}

// Unwrap returns the taxonomy sentinel for errors.Is checks.
func (e *BoundaryError) Unwrap() error {
	return e.Kind
}

func newBoundaryError(kind error, statusCode int, message string) *BoundaryError {
	if message == "" {
		message = msgGenerationFailed
	}

	return &BoundaryError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

func newNetworkError(err error) *BoundaryError {
	return &BoundaryError{
		Kind:       ErrNetwork,
		StatusCode: 0,
		Message:    fmt.Sprintf("Network error: %v", err),
	}
}
