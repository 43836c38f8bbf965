package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/tts-studio/internal/core"
	"github.com/book-expert/tts-studio/internal/voices"
)

// API paths on the synthesis boundary.
const (
	apiSynthesize = "/api/tts"
	apiVoices     = "/api/voices"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAPIKey      = "X-API-Key"
	contentTypeJSON   = "application/json"
	// MediaTypeAudio is the media type every successful payload is tagged with.
	MediaTypeAudio = "audio/mpeg"
)

// HTTPClient calls the synthesis boundary over HTTP. It implements
// core.Synthesizer and core.VoiceLister.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// synthesizeRequest is the JSON body the boundary expects.
type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// boundaryErrorResponse is the JSON error shape the boundary returns on
// non-success statuses.
type boundaryErrorResponse struct {
	Error string `json:"error"`
}

// NewHTTPClient creates a client for the boundary at baseURL. The timeout
// applies to every request; the generator itself adds no timeout of its own.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize posts one text unit to the boundary and returns the raw audio
// payload. The apiKey is attached as a request header only when non-empty,
// letting the boundary fall back to its server-held default. Failures are
// returned as *BoundaryError classified per the pipeline taxonomy.
func (c *HTTPClient) Synthesize(ctx context.Context, voiceID, text, apiKey string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSynthesize,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	if apiKey != "" {
		req.Header.Set(headerAPIKey, apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyFailure(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	return audio, nil
}

// ListVoices fetches the boundary's voice catalog, mapped to the internal
// shape. The key handling mirrors Synthesize.
func (c *HTTPClient) ListVoices(ctx context.Context, apiKey string) ([]core.Voice, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+apiVoices,
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice list request: %w", err)
	}

	if apiKey != "" {
		req.Header.Set(headerAPIKey, apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyFailure(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	list, err := voices.ParseProviderList(data)
	if err != nil {
		return nil, err
	}

	return voices.MapList(list), nil
}

// classifyFailure maps a non-success boundary response onto the error
// taxonomy, preserving the boundary's own message when one is present.
func (c *HTTPClient) classifyFailure(resp *http.Response) error {
	var errResp boundaryErrorResponse

	message := ""

	decodeErr := json.NewDecoder(resp.Body).Decode(&errResp)
	if decodeErr == nil {
		message = errResp.Error
	}

	kind := ErrBoundary

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrCredential
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	}

	return newBoundaryError(kind, resp.StatusCode, message)
}
