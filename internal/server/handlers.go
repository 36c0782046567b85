package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Antique3e/voice-generator/internal/core"
	"github.com/Antique3e/voice-generator/internal/store"
	ttstext "github.com/Antique3e/voice-generator/internal/tts/text"
)

const bytesPerMB = 1 << 20

// Static validation errors.
var (
	ErrNoFileUploaded = errors.New("no file uploaded")
	ErrTextRequired   = errors.New("text input is required")
	ErrTextTooLong    = errors.New("text is too long")
)

// handleUploadVoice stores a reference clip and returns its id.
func (s *Server) handleUploadVoice(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.HTTP.MaxUploadMB) * bytesPerMB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", core.ErrValidation, ErrNoFileUploaded))

		return
	}

	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: failed to read upload: %w", core.ErrValidation, err))

		return
	}

	contentType := header.Header.Get("Content-Type")
	if mediatype, _, parseErr := mime.ParseMediaType(contentType); parseErr == nil {
		contentType = mediatype
	}

	id, storedName, err := s.voices.SaveSample(header.Filename, contentType, data)
	if err != nil {
		writeError(w, err)

		return
	}

	s.log.Info("Stored voice sample %s (%d bytes)", storedName, len(data))

	writeJSON(w, UploadResponse{VoiceID: id, Filename: storedName})
}

// handleGenerate runs one synthesis job and persists its output file.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.FormValue("text"))

	if input == "" {
		writeError(w, fmt.Errorf("%w: %w", core.ErrValidation, ErrTextRequired))

		return
	}

	if len([]rune(input)) > s.cfg.TTS.MaxTextLength {
		writeError(w, fmt.Errorf("%w: %w (max %d characters)",
			core.ErrValidation, ErrTextTooLong, s.cfg.TTS.MaxTextLength))

		return
	}

	voiceID := r.FormValue("voice_id")
	samplePath := s.resolveVoiceSample(voiceID)

	req := core.SynthesisRequest{
		Text:            s.preprocessor.Normalize(input),
		VoiceSamplePath: samplePath,
		Temperature:     s.formFloat(r, "temperature", s.cfg.TTS.DefaultTemperature),
		Speed:           s.formFloat(r, "speed", s.cfg.TTS.DefaultSpeed),
		Emotion:         s.formString(r, "emotion", s.cfg.TTS.DefaultEmotion),
		SampleRate:      s.cfg.TTS.SampleRate,
	}

	audioData, err := s.engine.Synthesize(r.Context(), req)
	if err != nil {
		writeError(w, fmt.Errorf("generation failed: %w", err))

		return
	}

	id := uuid.NewString()
	preview := ttstext.Preview(input)

	filename, err := s.audio.SaveGeneration(id, preview, audioData)
	if err != nil {
		writeError(w, fmt.Errorf("generation failed: %w", err))

		return
	}

	s.publishGeneration(r, id, filename, preview, voiceID, audioData)

	writeJSON(w, GenerateResponse{
		ID:          id,
		Filename:    filename,
		DownloadURL: "/download/" + url.PathEscape(filename),
	})
}

// handleDownload serves one generated file by base name.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	// chi routes on the decoded path unless the request carried a
	// non-canonical escaping (RawPath set); only then is the param still
	// escaped. Unescaping unconditionally would corrupt filenames whose
	// preview contains a literal percent sequence.
	filename := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(filename); err == nil {
			filename = unescaped
		}
	}

	path, err := s.audio.Path(filename)
	if err != nil {
		writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

// handleHistory returns the newest generations from the output directory.
func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	items, err := s.audio.History(store.HistoryLimit)
	if err != nil {
		writeError(w, fmt.Errorf("failed to list history: %w", err))

		return
	}

	writeJSON(w, HistoryResponse{Items: items})
}

// handleStatus reports the active engine descriptor. Pure read.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.engine.Status())
}

// resolveVoiceSample maps an optional voice id to its stored path. A missing
// sample is treated as no sample, matching the upload-then-generate UI flow
// where stale ids should not fail a generation.
func (s *Server) resolveVoiceSample(voiceID string) string {
	if voiceID == "" {
		return ""
	}

	path, err := s.voices.Resolve(voiceID)
	if err != nil {
		s.log.Warn("Voice sample %q not found, generating without cloning reference", voiceID)

		return ""
	}

	return path
}

// publishGeneration mirrors the artifact and announces the event. Both are
// best-effort: failures are logged and never fail the request.
func (s *Server) publishGeneration(r *http.Request, id, filename, preview, voiceID string, audioData []byte) {
	if s.mirror != nil {
		err := s.mirror.Upload(r.Context(), filename, audioData)
		if err != nil {
			s.log.Error("Failed to mirror %s to object store: %v", filename, err)
		}
	}

	if s.notifier != nil {
		err := s.notifier.GenerationCompleted(id, filename, preview, voiceID, len(audioData))
		if err != nil {
			s.log.Error("Failed to publish generation event for %s: %v", filename, err)
		}
	}
}

func (s *Server) formFloat(r *http.Request, field string, fallback float64) float64 {
	raw := r.FormValue(field)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.log.Warn("Ignoring non-numeric %s value %q", field, raw)

		return fallback
	}

	return value
}

func (s *Server) formString(r *http.Request, field, fallback string) string {
	if value := r.FormValue(field); value != "" {
		return value
	}

	return fallback
}
