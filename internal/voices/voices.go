// Package voices maps provider voice listings into the internal catalog.
//
// Providers use their own field spellings and optional nested label objects;
// this package declares that shape explicitly and converts it with a pure
// mapping function, so the conversion is testable without a network call.
package voices

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/book-expert/tts-studio/internal/core"
)

// ProviderVoice is the duck-typed voice entry as the provider returns it.
// Either of the identifier spellings may be present depending on the
// provider API generation; every other field is optional.
type ProviderVoice struct {
	VoiceID      string         `json:"voice_id"`
	VoiceIDCamel string         `json:"voiceId"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Labels       ProviderLabels `json:"labels"`
}

// ProviderLabels is the optional nested label object on a provider voice.
type ProviderLabels struct {
	Accent      string `json:"accent"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Description string `json:"description"`
	UseCase     string `json:"use_case"`
}

// ProviderList is the top-level provider response shape.
type ProviderList struct {
	Voices []ProviderVoice `json:"voices"`
}

// Map converts one provider voice into the internal shape, normalizing the
// identifier spelling.
func Map(voice ProviderVoice) core.Voice {
	voiceID := voice.VoiceID
	if voiceID == "" {
		voiceID = voice.VoiceIDCamel
	}

	return core.Voice{
		VoiceID:     voiceID,
		Name:        voice.Name,
		Description: voice.Description,
		Labels: core.VoiceLabels{
			Accent:      voice.Labels.Accent,
			Gender:      voice.Labels.Gender,
			Age:         voice.Labels.Age,
			Description: voice.Labels.Description,
			UseCase:     voice.Labels.UseCase,
		},
	}
}

// MapList converts a full provider listing. The result is a fresh slice and
// never aliases the input.
func MapList(list ProviderList) []core.Voice {
	mapped := make([]core.Voice, 0, len(list.Voices))
	for _, voice := range list.Voices {
		mapped = append(mapped, Map(voice))
	}

	return mapped
}

// ParseProviderList decodes a raw provider response body.
func ParseProviderList(data []byte) (ProviderList, error) {
	var list ProviderList

	err := json.Unmarshal(data, &list)
	if err != nil {
		return ProviderList{Voices: nil}, fmt.Errorf("failed to unmarshal voice list: %w", err)
	}

	return list, nil
}

// FormatName renders a voice for display as "Name (accent, gender)". Labels
// that are absent are omitted; a voice with no labels renders as its bare
// name. The parenthesized form is display-only and must never be passed back
// as a voice identifier.
func FormatName(voice core.Voice) string {
	details := make([]string, 0, 2)
	if voice.Labels.Accent != "" {
		details = append(details, voice.Labels.Accent)
	}

	if voice.Labels.Gender != "" {
		details = append(details, voice.Labels.Gender)
	}

	if len(details) == 0 {
		return voice.Name
	}

	return fmt.Sprintf("%s (%s)", voice.Name, strings.Join(details, ", "))
}

// Catalog is the session's voice collection, safe for concurrent use.
// Refreshing after a credential change replaces the whole collection; entries
// are never merged.
type Catalog struct {
	mu     sync.RWMutex
	voices []core.Voice
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		mu:     sync.RWMutex{},
		voices: nil,
	}
}

// Replace swaps the entire catalog for the given listing.
func (c *Catalog) Replace(voices []core.Voice) {
	replacement := make([]core.Voice, len(voices))
	copy(replacement, voices)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.voices = replacement
}

// All returns a snapshot of the catalog.
func (c *Catalog) All() []core.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]core.Voice, len(c.voices))
	copy(snapshot, c.voices)

	return snapshot
}

// Find returns the voice with the given identifier, if present.
func (c *Catalog) Find(voiceID string) (core.Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, voice := range c.voices {
		if voice.VoiceID == voiceID {
			return voice, true
		}
	}

	return core.Voice{}, false
}
