// Package lines holds the authoritative in-memory collection of text lines
// and their generation statuses. Every mutation, whether from the batch
// engine's progress callbacks or from user actions, goes through the same
// transition rules, and playable resources are created and destroyed only
// here, tied to the owning line's lifecycle.
package lines

import (
	"strings"

	"github.com/google/uuid"

	"github.com/book-expert/tts-studio/internal/playback"
)

// Status is the generation state of a single line.
type Status int

const (
	// StatusIdle means no audio has been generated for the current text.
	StatusIdle Status = iota
	// StatusProcessing means a generation request is in flight.
	StatusProcessing
	// StatusReady means the stored audio matches the current text.
	StatusReady
	// StatusStale means audio exists but the text was edited after it was
	// generated.
	StatusStale
	// StatusError means the last generation attempt failed.
	StatusError
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusReady:
		return "ready"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// HasAudio reports whether a line in this status owns an audio payload.
func (s Status) HasAudio() bool {
	return s == StatusReady || s == StatusStale
}

// Line is one unit of text destined for conversion. The ID is assigned at
// creation and never reused within a session. Audio is present exactly when
// the status is ready or stale, and the playable handle never outlives it.
type Line struct {
	ID       string
	Text     string
	Status   Status
	Audio    []byte
	Playable playback.Handle
	Err      string
}

// SplitText turns an uploaded text blob into one Line per non-empty row,
// all idle, preserving row order.
func SplitText(text string) []Line {
	rows := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	split := make([]Line, 0, len(rows))

	for _, row := range rows {
		trimmed := strings.TrimSpace(row)
		if trimmed == "" {
			continue
		}

		split = append(split, Line{
			ID:       uuid.NewString(),
			Text:     trimmed,
			Status:   StatusIdle,
			Audio:    nil,
			Playable: "",
			Err:      "",
		})
	}

	return split
}
