// Package elevenlabs_test tests the upstream provider client.
package elevenlabs_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/book-expert/tts-studio/internal/elevenlabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Success(t *testing.T) {
	t.Parallel()

	var gotKey, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	t.Cleanup(server.Close)

	client := elevenlabs.New(elevenlabs.Config{BaseURL: server.URL})

	audio, err := client.Convert(context.Background(), "voice1", "Hello", "sk_abcdefgh12345678")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "sk_abcdefgh12345678", gotKey)
	assert.Equal(t, "/v1/text-to-speech/voice1", gotPath)
}

func TestConvert_RequiresKey(t *testing.T) {
	t.Parallel()

	client := elevenlabs.New(elevenlabs.Config{})

	_, err := client.Convert(context.Background(), "voice1", "Hello", "")
	require.ErrorIs(t, err, elevenlabs.ErrMissingAPIKey)
}

func TestConvert_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"rate limit"}`))
	}))
	t.Cleanup(server.Close)

	client := elevenlabs.New(elevenlabs.Config{BaseURL: server.URL})

	_, err := client.Convert(context.Background(), "voice1", "Hello", "sk_abcdefgh12345678")
	require.Error(t, err)

	var statusErr *elevenlabs.StatusError

	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestVoices_ParsesProviderShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/voices", r.URL.Path)
		_, _ = w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel"}]}`))
	}))
	t.Cleanup(server.Close)

	client := elevenlabs.New(elevenlabs.Config{BaseURL: server.URL})

	list, err := client.Voices(context.Background(), "sk_abcdefgh12345678")
	require.NoError(t, err)
	require.Len(t, list.Voices, 1)
	assert.Equal(t, "v1", list.Voices[0].VoiceID)
}
