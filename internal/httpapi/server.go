// Package httpapi implements the synthesis boundary: the HTTP endpoints the
// pipeline client calls, proxying to the upstream speech provider.
//
// A request may carry its own API key in the X-API-Key header; without one
// the server falls back to its configured key. The voice listing applies the
// same silent fallback rather than demanding a key outright.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-studio/internal/elevenlabs"
	"github.com/book-expert/tts-studio/internal/voices"
)

// Headers.
const (
	headerAPIKey        = "X-API-Key"
	headerContentType   = "Content-Type"
	headerContentLength = "Content-Length"
	headerCacheControl  = "Cache-Control"
	contentTypeJSON     = "application/json"
	contentTypeAudio    = "audio/mpeg"
	cacheControlNone    = "no-cache"
)

// User-facing error messages.
const (
	msgAPIKeyRequired   = "API key is required. Please configure your ElevenLabs API key in settings."
	msgAPIKeyRejected   = "Invalid or expired API key"
	msgTextRequired     = "Text is required and cannot be empty"
	msgVoiceIDRequired  = "Voice ID is required"
	msgRateLimited      = "Rate limit exceeded. Please try again shortly."
	msgGenerationFailed = "Failed to generate audio. Please try again."
	msgVoicesFailed     = "Failed to fetch voices. Please check your API configuration."
)

// Upstream is the provider surface the server proxies to.
type Upstream interface {
	Convert(ctx context.Context, voiceID, text, apiKey string) ([]byte, error)
	Voices(ctx context.Context, apiKey string) (voices.ProviderList, error)
}

// Server serves the boundary endpoints.
type Server struct {
	upstream  Upstream
	serverKey string
	log       *logger.Logger
	mux       *http.ServeMux
}

// NewServer creates the boundary server. serverKey is the server-held
// default credential; it may be empty, in which case requests must carry
// their own key.
func NewServer(upstream Upstream, serverKey string, log *logger.Logger) *Server {
	srv := &Server{
		upstream:  upstream,
		serverKey: serverKey,
		log:       log,
		mux:       http.NewServeMux(),
	}

	srv.mux.HandleFunc("POST /api/tts", srv.handleSynthesize)
	srv.mux.HandleFunc("GET /api/voices", srv.handleVoices)
	srv.mux.HandleFunc("GET /health", srv.handleHealth)

	return srv
}

// Handler returns the server's routing handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// effectiveKey picks the request's key or falls back to the server key.
func (s *Server) effectiveKey(r *http.Request) string {
	key := r.Header.Get(headerAPIKey)
	if key != "" {
		return key
	}

	return s.serverKey
}

// synthesizeRequest is the boundary request body.
type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	apiKey := s.effectiveKey(r)
	if apiKey == "" {
		writeError(w, http.StatusUnauthorized, msgAPIKeyRequired)

		return
	}

	var req synthesizeRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgTextRequired)

		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, msgTextRequired)

		return
	}

	if strings.TrimSpace(req.VoiceID) == "" {
		writeError(w, http.StatusBadRequest, msgVoiceIDRequired)

		return
	}

	audio, err := s.upstream.Convert(r.Context(), req.VoiceID, text, apiKey)
	if err != nil {
		s.log.Error("Upstream synthesis failed for voice %s: %v", req.VoiceID, err)
		s.writeUpstreamError(w, err)

		return
	}

	if len(audio) == 0 {
		s.log.Error("Upstream returned empty payload for voice %s", req.VoiceID)
		writeError(w, http.StatusInternalServerError, msgGenerationFailed)

		return
	}

	w.Header().Set(headerContentType, contentTypeAudio)
	w.Header().Set(headerContentLength, strconv.Itoa(len(audio)))
	w.Header().Set(headerCacheControl, cacheControlNone)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	list, err := s.upstream.Voices(r.Context(), s.effectiveKey(r))
	if err != nil {
		s.log.Error("Upstream voice listing failed: %v", err)
		writeError(w, http.StatusInternalServerError, msgVoicesFailed)

		return
	}

	mapped := struct {
		Voices any `json:"voices"`
	}{Voices: voices.MapList(list)}

	w.Header().Set(headerContentType, contentTypeJSON)
	_ = json.NewEncoder(w).Encode(mapped)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// writeUpstreamError maps provider failures onto the boundary's contract.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	var statusErr *elevenlabs.StatusError

	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			writeError(w, http.StatusUnauthorized, msgAPIKeyRejected)

			return
		case http.StatusTooManyRequests:
			writeError(w, http.StatusTooManyRequests, msgRateLimited)

			return
		}
	}

	if errors.Is(err, elevenlabs.ErrMissingAPIKey) {
		writeError(w, http.StatusUnauthorized, msgAPIKeyRequired)

		return
	}

	writeError(w, http.StatusInternalServerError, msgGenerationFailed)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
