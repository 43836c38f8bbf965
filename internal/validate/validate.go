// Package validate provides pure input validation for the tts-studio pipeline.
//
// Every function is side-effect free and returns a Result describing whether
// the input is acceptable and, if not, which field failed and why. Validation
// always happens before any network call is made.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// API key format constants for the ElevenLabs-style credential.
const (
	// APIKeyPrefix is the fixed prefix every valid API key carries.
	APIKeyPrefix = "sk_"
	// MinAPIKeyLength is the minimum total key length (prefix + 16 characters).
	MinAPIKeyLength = 18
	// MaxVoiceIDLength is the maximum accepted voice identifier length.
	MaxVoiceIDLength = 50
	// MaxTextLength is the maximum accepted text length per line.
	MaxTextLength = 10000
	// MinSpeed is the lowest accepted playback speed multiplier.
	MinSpeed = 0.5
	// MaxSpeed is the highest accepted playback speed multiplier.
	MaxSpeed = 2.0
)

// Field names reported in validation results.
const (
	FieldAPIKey  = "apiKey"
	FieldVoiceID = "voiceId"
	FieldText    = "text"
	FieldSpeed   = "speed"
	FieldAudio   = "audioPayload"
)

// Validation error messages.
const (
	MsgAPIKeyInvalidFormat = "invalid API key format: API keys start with \"sk_\" followed by alphanumeric characters"
	MsgTextRequired        = "Text is required and cannot be empty"
	MsgVoiceIDRequired     = "Voice ID is required"
	MsgVoiceIDInvalid      = "Invalid voice ID format"
	MsgNoAudioData         = "No audio data available"
	MsgEmptyAudio          = "Received empty audio file"
	MsgSpeedNotANumber     = "Speed must be a valid number"
)

// apiKeyPattern matches the fixed prefix followed by at least 16 alphanumeric
// characters.
var apiKeyPattern = regexp.MustCompile(`^sk_[a-zA-Z0-9]{16,}$`)

// Result describes the outcome of a single validation check.
type Result struct {
	IsValid bool
	Err     string
	Field   string
}

func valid() Result {
	return Result{IsValid: true, Err: "", Field: ""}
}

func invalid(field, msg string) Result {
	return Result{IsValid: false, Err: msg, Field: field}
}

// APIKeyFormat checks that a credential matches the provider key format:
// the fixed prefix plus at least 16 alphanumeric characters, at least
// MinAPIKeyLength characters in total after trimming.
func APIKeyFormat(apiKey string) Result {
	trimmed := strings.TrimSpace(apiKey)
	if len(trimmed) < MinAPIKeyLength {
		return invalid(FieldAPIKey,
			fmt.Sprintf("API key must be at least %d characters", MinAPIKeyLength))
	}

	if !apiKeyPattern.MatchString(trimmed) {
		return invalid(FieldAPIKey, MsgAPIKeyInvalidFormat)
	}

	return valid()
}

// VoiceID checks a raw voice identifier. Identifiers containing '(' or '-'
// are rejected: those characters only appear in "Name (label)" display
// strings, never in a raw identifier, so their presence means a caller passed
// the wrong value.
func VoiceID(voiceID string) Result {
	trimmed := strings.TrimSpace(voiceID)
	if trimmed == "" {
		return invalid(FieldVoiceID, MsgVoiceIDRequired)
	}

	if len(trimmed) > MaxVoiceIDLength {
		return invalid(FieldVoiceID, MsgVoiceIDInvalid)
	}

	if strings.Contains(trimmed, "(") || strings.Contains(trimmed, "-") {
		return invalid(FieldVoiceID, MsgVoiceIDInvalid)
	}

	return valid()
}

// Text checks one line of input text: non-empty after trimming and within
// the configured maximum length. The limit counts characters, not bytes, so
// multibyte text is not rejected early.
func Text(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return invalid(FieldText, MsgTextRequired)
	}

	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return invalid(FieldText,
			fmt.Sprintf("Text exceeds maximum length of %d characters", MaxTextLength))
	}

	return valid()
}

// Speed checks a playback speed multiplier: finite and within [MinSpeed, MaxSpeed].
func Speed(speed float64) Result {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return invalid(FieldSpeed, MsgSpeedNotANumber)
	}

	if speed < MinSpeed || speed > MaxSpeed {
		return invalid(FieldSpeed,
			fmt.Sprintf("Speed must be between %.1f and %.1f", MinSpeed, MaxSpeed))
	}

	return valid()
}

// AudioPayload checks a binary audio payload returned by the synthesis
// boundary. A nil payload and a zero-length payload are distinct failures:
// one means no data was produced at all, the other means the boundary
// reported success with an empty body.
func AudioPayload(payload []byte) Result {
	if payload == nil {
		return invalid(FieldAudio, MsgNoAudioData)
	}

	if len(payload) == 0 {
		return invalid(FieldAudio, MsgEmptyAudio)
	}

	return valid()
}
