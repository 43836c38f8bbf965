package tts

import (
	"context"
	"strings"

	"github.com/book-expert/tts-studio/internal/core"
	"github.com/book-expert/tts-studio/internal/validate"
)

// KeyResolver yields the credential to attach to outbound requests; an empty
// string means "rely on the boundary's implicit default".
type KeyResolver interface {
	EffectiveKey() string
}

// Result is the outcome of one text-to-audio conversion.
type Result struct {
	Success bool
	// Audio is the binary payload, present only on success.
	Audio []byte
	// MediaType is the normalized media type tag of the payload.
	MediaType string
	// Err is the user-facing failure message, present only on failure.
	Err string
}

func failure(message string) Result {
	return Result{Success: false, Audio: nil, MediaType: "", Err: message}
}

// Generator performs single-line text-to-audio conversions against a
// synthesis boundary. It validates inputs before any network call, attaches
// the resolved credential, and validates the returned payload. The generator
// never retries; retry is always caller-initiated.
type Generator struct {
	synth core.Synthesizer
	keys  KeyResolver
}

// NewGenerator creates a Generator over the given boundary and key resolver.
func NewGenerator(synth core.Synthesizer, keys KeyResolver) *Generator {
	return &Generator{synth: synth, keys: keys}
}

// Generate converts one line of text using the given voice. Validation
// failures short-circuit locally; boundary failures surface the boundary's
// own message, or a generic fallback when it provides none. A success
// response with an empty body is reported as a failure.
func (g *Generator) Generate(ctx context.Context, voiceID, text string) Result {
	if check := validate.VoiceID(voiceID); !check.IsValid {
		return failure(check.Err)
	}

	if check := validate.Text(text); !check.IsValid {
		return failure(check.Err)
	}

	audio, err := g.synth.Synthesize(ctx, voiceID, strings.TrimSpace(text), g.keys.EffectiveKey())
	if err != nil {
		return failure(err.Error())
	}

	if check := validate.AudioPayload(audio); !check.IsValid {
		return failure(check.Err)
	}

	return Result{Success: true, Audio: audio, MediaType: MediaTypeAudio, Err: ""}
}
