// Package tts provides the synthesis engines behind the voice-generator
// service: a remote engine that talks to a sidecar hosting the real model,
// and a placeholder tone engine used when no sidecar is reachable.
package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/Antique3e/voice-generator/internal/config"
	"github.com/Antique3e/voice-generator/internal/core"
)

// probeTimeout bounds the startup health probe that picks the engine.
const probeTimeout = 10 * time.Second

const deviceRemote = "remote"

// RemoteEngine synthesizes speech through the sidecar service.
type RemoteEngine struct {
	client       *Client
	modelName    string
	quantization string
	timeout      time.Duration
	log          *logger.Logger
}

// NewRemoteEngine creates an engine backed by the synthesis sidecar at the
// configured URL.
func NewRemoteEngine(cfg config.TTSConfig, log *logger.Logger) *RemoteEngine {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	return &RemoteEngine{
		client:       NewClient(cfg.ServiceURL, timeout),
		modelName:    cfg.ModelName,
		quantization: cfg.Quantization,
		timeout:      timeout,
		log:          log,
	}
}

// NewRemoteEngineWithClient injects a custom client, primarily for tests.
func NewRemoteEngineWithClient(
	cfg config.TTSConfig,
	log *logger.Logger,
	client *Client,
) *RemoteEngine {
	return &RemoteEngine{
		client:       client,
		modelName:    cfg.ModelName,
		quantization: cfg.Quantization,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:          log,
	}
}

// Synthesize forwards the request to the sidecar and returns its WAV output.
func (e *RemoteEngine) Synthesize(ctx context.Context, req core.SynthesisRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	audioData, err := e.client.GenerateSpeech(ctx, SpeechRequest{
		Text:           req.Text,
		SpeakerRefPath: req.VoiceSamplePath,
		Temperature:    req.Temperature,
		Speed:          req.Speed,
		Emotion:        req.Emotion,
		SampleRate:     req.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	e.log.Info("Generated speech: %d bytes", len(audioData))

	return audioData, nil
}

// Status probes the sidecar health endpoint. An unreachable sidecar reports
// Loaded=false rather than an error so status stays a pure read.
func (e *RemoteEngine) Status() core.EngineStatus {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	status := core.EngineStatus{
		ModelName:          e.modelName,
		Loaded:             false,
		Quantization:       e.quantization,
		Device:             deviceRemote,
		RealModelAvailable: true,
	}

	health, err := e.client.HealthCheck(ctx)
	if err != nil {
		e.log.Warn("Synthesis service health check failed: %v", err)

		return status
	}

	status.Loaded = health.ModelLoaded
	if health.Device != "" {
		status.Device = health.Device
	}

	return status
}

// Close is a no-op; the HTTP client needs no explicit cleanup.
func (e *RemoteEngine) Close() error {
	return nil
}

// Select picks the synthesis engine for the given configuration: the sidecar
// when one is configured and healthy, otherwise the placeholder tone engine.
// This mirrors the fail-soft startup of the original studio: a missing model
// never prevents the service from coming up.
func Select(cfg config.TTSConfig, log *logger.Logger) core.SpeechSynthesizer {
	if cfg.ServiceURL == "" {
		log.Info("No synthesis service configured, using placeholder tone engine")

		return NewToneEngine(cfg.ModelName, cfg.Quantization, cfg.SampleRate, log)
	}

	engine := NewRemoteEngine(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	health, err := engine.client.HealthCheck(ctx)
	if err != nil {
		log.Warn("Synthesis service at %s unavailable (%v), falling back to placeholder", cfg.ServiceURL, err)

		return NewToneEngine(cfg.ModelName, cfg.Quantization, cfg.SampleRate, log)
	}

	log.Info("Using synthesis service at %s (model loaded: %t)", cfg.ServiceURL, health.ModelLoaded)

	return engine
}
