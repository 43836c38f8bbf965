// Package keystore manages the user-supplied API credential and the session
// preferences (voice and speed) over an injected key-value store.
//
// The backing store may be unavailable in non-interactive contexts; every
// operation degrades to a safe no-op or empty result in that case. At most
// one custom credential is held at a time, and a credential is only ever
// returned to callers after it independently passes format validation.
package keystore

import (
	"errors"
	"strconv"

	"github.com/book-expert/tts-studio/internal/core"
	"github.com/book-expert/tts-studio/internal/validate"
)

// Storage keys.
const (
	KeyAPIKey       = "elevenlabs_api_key"
	KeyAPIKeyStatus = "elevenlabs_api_key_status"
	KeyVoiceID      = "voiceId"
	KeySpeed        = "speed"
)

// DefaultSpeed is the speed multiplier used when no preference is stored.
const DefaultSpeed = 1.0

// Status describes which credential requests will be sent with.
type Status string

const (
	// StatusDefault means requests rely on the boundary's implicit default key.
	StatusDefault Status = "default"
	// StatusCustom means a user-supplied key is stored and well-formed.
	StatusCustom Status = "custom"
	// StatusNone means no usable credential source is known.
	StatusNone Status = "none"
)

// ErrInvalidKeyFormat is returned when Store is given a malformed credential.
var ErrInvalidKeyFormat = errors.New("invalid API key format")

// Manager resolves the effective credential and persists preferences.
type Manager struct {
	store core.KeyValueStore
}

// New creates a Manager over the given key-value store.
func New(store core.KeyValueStore) *Manager {
	return &Manager{store: store}
}

// EffectiveKey returns the stored credential if present and well-formed, or
// the empty string to signal "use the boundary's implicit default".
func (m *Manager) EffectiveKey() string {
	if !m.store.Available() {
		return ""
	}

	key, ok := m.store.Get(KeyAPIKey)
	if !ok {
		return ""
	}

	if !validate.APIKeyFormat(key).IsValid {
		return ""
	}

	return key
}

// Store validates and persists a user-supplied credential, marking the
// status as custom. A malformed key is rejected without touching the store.
func (m *Manager) Store(apiKey string) error {
	if !validate.APIKeyFormat(apiKey).IsValid {
		return ErrInvalidKeyFormat
	}

	if !m.store.Available() {
		return nil
	}

	err := m.store.Set(KeyAPIKey, apiKey)
	if err != nil {
		return err
	}

	return m.store.Set(KeyAPIKeyStatus, string(StatusCustom))
}

// Clear removes the stored credential and resets the status to default.
func (m *Manager) Clear() error {
	if !m.store.Available() {
		return nil
	}

	err := m.store.Remove(KeyAPIKey)
	if err != nil {
		return err
	}

	return m.store.Set(KeyAPIKeyStatus, string(StatusDefault))
}

// CurrentStatus reports which credential requests will use. A stored,
// well-formed key always reports custom regardless of the stored flag.
func (m *Manager) CurrentStatus() Status {
	if !m.store.Available() {
		return StatusDefault
	}

	key, ok := m.store.Get(KeyAPIKey)
	if ok && validate.APIKeyFormat(key).IsValid {
		return StatusCustom
	}

	flag, ok := m.store.Get(KeyAPIKeyStatus)
	if !ok {
		return StatusDefault
	}

	switch Status(flag) {
	case StatusDefault, StatusCustom, StatusNone:
		return Status(flag)
	default:
		return StatusDefault
	}
}

// SetStatus records the credential status flag.
func (m *Manager) SetStatus(status Status) error {
	if !m.store.Available() {
		return nil
	}

	return m.store.Set(KeyAPIKeyStatus, string(status))
}

// Initialize reconciles the status flag with the stored key on startup.
// A flag claiming a custom key while the stored key is missing or malformed
// clears the key and falls back to default.
func (m *Manager) Initialize() error {
	if !m.store.Available() {
		return nil
	}

	flag, ok := m.store.Get(KeyAPIKeyStatus)
	if !ok {
		return m.SetStatus(StatusDefault)
	}

	if Status(flag) != StatusCustom {
		return nil
	}

	key, ok := m.store.Get(KeyAPIKey)
	if !ok || !validate.APIKeyFormat(key).IsValid {
		return m.Clear()
	}

	return nil
}

// Preferences holds the persisted session settings.
type Preferences struct {
	VoiceID string
	Speed   float64
}

// LoadPreferences reads the persisted voice and speed. An invalid cached
// voice identifier is discarded from the store and never surfaced; an
// unparsable or out-of-range speed falls back to DefaultSpeed.
func (m *Manager) LoadPreferences() Preferences {
	prefs := Preferences{VoiceID: "", Speed: DefaultSpeed}

	if !m.store.Available() {
		return prefs
	}

	voiceID, ok := m.store.Get(KeyVoiceID)
	if ok {
		if validate.VoiceID(voiceID).IsValid {
			prefs.VoiceID = voiceID
		} else {
			_ = m.store.Remove(KeyVoiceID)
		}
	}

	raw, ok := m.store.Get(KeySpeed)
	if ok {
		speed, err := strconv.ParseFloat(raw, 64)
		if err == nil && validate.Speed(speed).IsValid {
			prefs.Speed = speed
		}
	}

	return prefs
}

// SaveVoiceID persists the selected voice. Invalid identifiers are ignored.
func (m *Manager) SaveVoiceID(voiceID string) error {
	if !m.store.Available() {
		return nil
	}

	if !validate.VoiceID(voiceID).IsValid {
		return nil
	}

	return m.store.Set(KeyVoiceID, voiceID)
}

// SaveSpeed persists the speed multiplier. Out-of-range values are ignored.
func (m *Manager) SaveSpeed(speed float64) error {
	if !m.store.Available() {
		return nil
	}

	if !validate.Speed(speed).IsValid {
		return nil
	}

	return m.store.Set(KeySpeed, strconv.FormatFloat(speed, 'f', -1, 64))
}

// ClearPreferences removes the persisted voice and speed.
func (m *Manager) ClearPreferences() error {
	if !m.store.Available() {
		return nil
	}

	err := m.store.Remove(KeyVoiceID)
	if err != nil {
		return err
	}

	return m.store.Remove(KeySpeed)
}
