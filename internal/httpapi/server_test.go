// Package httpapi_test tests the boundary endpoints against a fake upstream.
package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/book-expert/logger"
	"github.com/book-expert/tts-studio/internal/elevenlabs"
	"github.com/book-expert/tts-studio/internal/httpapi"
	"github.com/book-expert/tts-studio/internal/voices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream is a scriptable provider.
type fakeUpstream struct {
	audio      []byte
	convertErr error
	voiceList  voices.ProviderList
	voicesErr  error

	lastKey  string
	lastText string
}

func (f *fakeUpstream) Convert(_ context.Context, _, text, apiKey string) ([]byte, error) {
	f.lastKey = apiKey
	f.lastText = text

	if f.convertErr != nil {
		return nil, f.convertErr
	}

	return f.audio, nil
}

func (f *fakeUpstream) Voices(_ context.Context, apiKey string) (voices.ProviderList, error) {
	f.lastKey = apiKey

	if f.voicesErr != nil {
		return voices.ProviderList{Voices: nil}, f.voicesErr
	}

	return f.voiceList, nil
}

func newServer(t *testing.T, upstream httpapi.Upstream, serverKey string) *httptest.Server {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	server := httptest.NewServer(httpapi.NewServer(upstream, serverKey, log).Handler())
	t.Cleanup(server.Close)

	return server
}

func postTTS(t *testing.T, url, body, apiKey string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(
		context.Background(), http.MethodPost, url+"/api/tts", strings.NewReader(body))
	require.NoError(t, err)

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body map[string]string

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body["error"]
}

func TestSynthesize_Success(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{audio: []byte("mp3")}
	server := newServer(t, upstream, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":" Hello ","voiceId":"v1"}`, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	// Server key fallback was used, and the text was trimmed.
	assert.Equal(t, "sk_serverkey12345678", upstream.lastKey)
	assert.Equal(t, "Hello", upstream.lastText)
}

func TestSynthesize_HeaderKeyOverridesServerKey(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{audio: []byte("mp3")}
	server := newServer(t, upstream, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":"Hi","voiceId":"v1"}`, "sk_userkey1234567890")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sk_userkey1234567890", upstream.lastKey)
}

func TestSynthesize_NoKeyAnywhere(t *testing.T) {
	t.Parallel()

	server := newServer(t, &fakeUpstream{audio: []byte("mp3")}, "")

	resp := postTTS(t, server.URL, `{"text":"Hi","voiceId":"v1"}`, "")

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "API key is required")
}

func TestSynthesize_MissingFields(t *testing.T) {
	t.Parallel()

	server := newServer(t, &fakeUpstream{audio: []byte("mp3")}, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":"  ","voiceId":"v1"}`, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text is required and cannot be empty", errorMessage(t, resp))

	resp = postTTS(t, server.URL, `{"text":"Hi","voiceId":""}`, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Voice ID is required", errorMessage(t, resp))
}

func TestSynthesize_UpstreamRateLimit(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{
		convertErr: &elevenlabs.StatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"},
	}
	server := newServer(t, upstream, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":"Hi","voiceId":"v1"}`, "")

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Rate limit exceeded. Please try again shortly.", errorMessage(t, resp))
}

func TestSynthesize_UpstreamRejectsKey(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{
		convertErr: &elevenlabs.StatusError{StatusCode: http.StatusUnauthorized, Body: "bad key"},
	}
	server := newServer(t, upstream, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":"Hi","voiceId":"v1"}`, "")

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired API key", errorMessage(t, resp))
}

func TestSynthesize_EmptyUpstreamPayload(t *testing.T) {
	t.Parallel()

	server := newServer(t, &fakeUpstream{audio: []byte{}}, "sk_serverkey12345678")

	resp := postTTS(t, server.URL, `{"text":"Hi","voiceId":"v1"}`, "")

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestVoices_MapsToInternalShape(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{voiceList: voices.ProviderList{Voices: []voices.ProviderVoice{
		{VoiceIDCamel: "v1", Name: "Rachel"},
	}}}
	server := newServer(t, upstream, "sk_serverkey12345678")

	resp, err := http.Get(server.URL + "/api/voices")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
			Name    string `json:"name"`
		} `json:"voices"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Voices, 1)
	assert.Equal(t, "v1", body.Voices[0].VoiceID)
	assert.Equal(t, "Rachel", body.Voices[0].Name)
}

func TestVoices_UpstreamFailure(t *testing.T) {
	t.Parallel()

	upstream := &fakeUpstream{voicesErr: elevenlabs.ErrMissingAPIKey}
	server := newServer(t, upstream, "")

	resp, err := http.Get(server.URL + "/api/voices")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to fetch voices. Please check your API configuration.", errorMessage(t, resp))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := newServer(t, &fakeUpstream{audio: []byte("mp3")}, "")

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
