package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Antique3e/voice-generator/internal/config"
	"github.com/Antique3e/voice-generator/internal/core"
	"github.com/Antique3e/voice-generator/internal/tts"
)

// newMockSidecar creates a mock synthesis service with per-path handlers.
func newMockSidecar(
	t *testing.T,
	responses map[string]http.HandlerFunc,
) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			handler, exists := responses[r.URL.Path]
			if !exists {
				t.Errorf("unexpected request path: %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)

				return
			}

			handler(w, r)
		},
	))
}

func healthyHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       "healthy",
		"model_loaded": true,
		"device":       "cuda",
	})
}

func testTTSConfig(serviceURL string) config.TTSConfig {
	return config.TTSConfig{
		ModelName:      "boson-ai/higgs-audio-v2",
		Quantization:   "full",
		ServiceURL:     serviceURL,
		TimeoutSeconds: 30,
		SampleRate:     24000,
	}
}

func TestRemoteEngineSynthesize(t *testing.T) {
	t.Parallel()

	const mockAudio = "mock-wav-audio-data"

	var captured tts.SpeechRequest

	server := newMockSidecar(t, map[string]http.HandlerFunc{
		"/health": healthyHandler,
		"/v1/generate/speech": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "audio/wav")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockAudio))
		},
	})
	defer server.Close()

	cfg := testTTSConfig(server.URL)
	client := tts.NewClient(server.URL, 30*time.Second)
	engine := tts.NewRemoteEngineWithClient(cfg, newTestLogger(t), client)

	defer engine.Close()

	data, err := engine.Synthesize(context.Background(), core.SynthesisRequest{
		Text:            "Hello, this is a test.",
		VoiceSamplePath: "/samples/ref.wav",
		Temperature:     0.8,
		Speed:           1.2,
		Emotion:         "happy",
		SampleRate:      24000,
	})
	require.NoError(t, err)
	require.Equal(t, mockAudio, string(data))

	require.Equal(t, "Hello, this is a test.", captured.Text)
	require.Equal(t, "/samples/ref.wav", captured.SpeakerRefPath)
	require.InEpsilon(t, 0.8, captured.Temperature, 0.001)
	require.InEpsilon(t, 1.2, captured.Speed, 0.001)
	require.Equal(t, "happy", captured.Emotion)
	require.Equal(t, 24000, captured.SampleRate)
}

func TestRemoteEngineSurfacesServiceError(t *testing.T) {
	t.Parallel()

	server := newMockSidecar(t, map[string]http.HandlerFunc{
		"/v1/generate/speech": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"detail": "model crashed",
			})
		},
	})
	defer server.Close()

	cfg := testTTSConfig(server.URL)
	client := tts.NewClient(server.URL, 5*time.Second)
	engine := tts.NewRemoteEngineWithClient(cfg, newTestLogger(t), client)

	defer engine.Close()

	_, err := engine.Synthesize(context.Background(), core.SynthesisRequest{Text: "hello"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model crashed")
}

func TestRemoteEngineReportsBackendUnavailable(t *testing.T) {
	t.Parallel()

	// A sidecar that was reachable at startup but is gone at request time.
	server := newMockSidecar(t, map[string]http.HandlerFunc{
		"/health": healthyHandler,
	})
	server.Close()

	cfg := testTTSConfig(server.URL)
	client := tts.NewClient(server.URL, 5*time.Second)
	engine := tts.NewRemoteEngineWithClient(cfg, newTestLogger(t), client)

	defer engine.Close()

	_, err := engine.Synthesize(context.Background(), core.SynthesisRequest{Text: "hello"})
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestRemoteEngineStatus(t *testing.T) {
	t.Parallel()

	server := newMockSidecar(t, map[string]http.HandlerFunc{
		"/health": healthyHandler,
	})
	defer server.Close()

	cfg := testTTSConfig(server.URL)
	client := tts.NewClient(server.URL, 5*time.Second)
	engine := tts.NewRemoteEngineWithClient(cfg, newTestLogger(t), client)

	defer engine.Close()

	status := engine.Status()

	require.Equal(t, "boson-ai/higgs-audio-v2", status.ModelName)
	require.True(t, status.Loaded)
	require.Equal(t, "cuda", status.Device)
	require.True(t, status.RealModelAvailable)
}

func TestSelectFallsBackWhenServiceUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	))
	defer server.Close()

	engine := tts.Select(testTTSConfig(server.URL), newTestLogger(t))
	defer engine.Close()

	status := engine.Status()
	require.False(t, status.RealModelAvailable)
	require.True(t, status.Loaded)
}

func TestSelectUsesToneEngineWithoutServiceURL(t *testing.T) {
	t.Parallel()

	engine := tts.Select(testTTSConfig(""), newTestLogger(t))
	defer engine.Close()

	status := engine.Status()
	require.False(t, status.RealModelAvailable)
}
