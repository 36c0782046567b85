// Package core defines the domain types, interfaces, and error kinds shared by
// the voice-generator service.
package core

import (
	"context"
	"errors"
)

// The three error kinds the HTTP layer distinguishes. Every handler failure
// wraps exactly one of these so the transport can map it to a status code.
var (
	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("validation error")
	// ErrBackendUnavailable indicates the synthesis backend is not ready.
	ErrBackendUnavailable = errors.New("synthesis backend unavailable")
	// ErrNotFound indicates a requested file does not exist.
	ErrNotFound = errors.New("not found")
)

// SynthesisRequest holds one text-to-speech job. Temperature, speed, and
// emotion are passed through to the engine without range validation.
type SynthesisRequest struct {
	Text            string
	VoiceSamplePath string
	Temperature     float64
	Speed           float64
	Emotion         string
	SampleRate      int
}

// EngineStatus describes the active synthesis backend.
type EngineStatus struct {
	ModelName          string `json:"model_name"`
	Loaded             bool   `json:"loaded"`
	Quantization       string `json:"quantization"`
	Device             string `json:"device"`
	RealModelAvailable bool   `json:"real_model_available"`
}

// SpeechSynthesizer is the interface every synthesis engine implements.
// Synthesize returns complete WAV data; streaming is out of scope.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
	Status() EngineStatus
	Close() error
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
