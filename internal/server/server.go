// Package server exposes the voice-generator HTTP API: voice sample upload,
// speech generation, audio download, history, and status.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Antique3e/voice-generator/internal/config"
	"github.com/Antique3e/voice-generator/internal/core"
	"github.com/Antique3e/voice-generator/internal/store"
	ttstext "github.com/Antique3e/voice-generator/internal/tts/text"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// GenerationNotifier announces completed generations to interested consumers.
type GenerationNotifier interface {
	GenerationCompleted(id, filename, preview, voiceID string, sizeBytes int) error
}

// Server wires the synthesis engine and stores into the HTTP API. The mirror
// and notifier are optional; nil disables them.
type Server struct {
	cfg          *config.Config
	log          *logger.Logger
	engine       core.SpeechSynthesizer
	voices       *store.VoiceStore
	audio        *store.AudioStore
	preprocessor *ttstext.Preprocessor
	mirror       core.ObjectStore
	notifier     GenerationNotifier
}

// New creates the API server.
func New(
	cfg *config.Config,
	log *logger.Logger,
	engine core.SpeechSynthesizer,
	voices *store.VoiceStore,
	audio *store.AudioStore,
	mirror core.ObjectStore,
	notifier GenerationNotifier,
) *Server {
	return &Server{
		cfg:          cfg,
		log:          log,
		engine:       engine,
		voices:       voices,
		audio:        audio,
		preprocessor: ttstext.NewPreprocessor(),
		mirror:       mirror,
		notifier:     notifier,
	}
}

// Router builds the chi router for the API surface.
func (s *Server) Router() chi.Router {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	}))

	router.Post("/upload-voice", s.handleUploadVoice)
	router.Post("/generate", s.handleGenerate)
	router.Get("/download/{filename}", s.handleDownload)
	router.Get("/history", s.handleHistory)
	router.Get("/status", s.handleStatus)

	return router
}

// Run serves the API until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	s.log.System("Serving voice-generator API on %s", s.cfg.ListenAddr())

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	return nil
}

// writeJSON writes a JSON response body with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	_ = enc.Encode(v)
}

// writeError maps the error's kind to a status code and writes a JSON body
// with a human-readable detail message.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, core.ErrBackendUnavailable):
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: err.Error()})
}
