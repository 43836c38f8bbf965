// Package core defines the shared interfaces and domain types for tts-studio.
package core

import "context"

// KeyValueStore abstracts durable local storage for credentials and
// preferences. Implementations must be safe to call in non-interactive
// contexts; an unavailable store behaves as empty.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	Available() bool
}

// Synthesizer converts one unit of text into an audio payload using the
// given voice profile. The optional apiKey is attached to the request when
// non-empty; otherwise the boundary falls back to its own default.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text, apiKey string) ([]byte, error)
}

// VoiceLister fetches the full voice catalog from the synthesis boundary.
// The catalog is always replaced wholesale, never merged.
type VoiceLister interface {
	ListVoices(ctx context.Context, apiKey string) ([]Voice, error)
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Pacer spaces out successive synthesis requests. Wait blocks until the next
// request may be sent, or returns early with the context's error.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Voice is a provider-defined synthesis profile. Immutable once fetched.
type Voice struct {
	VoiceID     string      `json:"voice_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Labels      VoiceLabels `json:"labels"`
}

// VoiceLabels holds the optional descriptive labels a provider attaches to a
// voice. All fields are optional.
type VoiceLabels struct {
	Accent      string `json:"accent,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Age         string `json:"age,omitempty"`
	Description string `json:"description,omitempty"`
	UseCase     string `json:"use_case,omitempty"`
}
