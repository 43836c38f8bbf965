// Package elevenlabs implements the upstream provider client used by the
// boundary server to synthesize speech and list voices.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/tts-studio/internal/voices"
)

// DefaultBaseURL is the provider API root.
const DefaultBaseURL = "https://api.elevenlabs.io"

// Provider defaults.
const (
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "mp3_44100_128"
	defaultTimeout      = 30 * time.Second
	headerAPIKey        = "xi-api-key"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// ErrMissingAPIKey is returned when a request has no key to send.
var ErrMissingAPIKey = errors.New("missing provider API key")

// StatusError reports a non-success provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error renders the provider status and body.
func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the ElevenLabs HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	modelID    string
}

// Config holds client construction options. Zero values select provider
// defaults.
type Config struct {
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// New creates a Client from the config.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		modelID: modelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// convertRequest is the provider's text-to-speech request body.
type convertRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Convert synthesizes text with the given voice and returns the raw MP3
// payload. The apiKey is required; the provider has no anonymous access.
func (c *Client) Convert(ctx context.Context, voiceID, text, apiKey string) ([]byte, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(convertRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal convert request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, defaultOutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create convert request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAPIKey, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send convert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio payload: %w", err)
	}

	return audio, nil
}

// Voices fetches the provider voice catalog in the provider's own shape.
func (c *Client) Voices(ctx context.Context, apiKey string) (voices.ProviderList, error) {
	empty := voices.ProviderList{Voices: nil}

	if apiKey == "" {
		return empty, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", http.NoBody)
	if err != nil {
		return empty, fmt.Errorf("failed to create voices request: %w", err)
	}

	req.Header.Set(headerAPIKey, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("failed to send voices request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, newStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("failed to read voices response: %w", err)
	}

	return voices.ParseProviderList(data)
}

func newStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
