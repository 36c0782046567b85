package tts

import (
	"context"
	"fmt"
	"math"

	"github.com/book-expert/logger"

	"github.com/Antique3e/voice-generator/internal/core"
)

// Tone parameters for the placeholder engine. Duration scales with text
// length so the UI behaves plausibly without the real model installed.
const (
	toneFrequencyHz     = 440.0
	toneAmplitude       = 0.15
	toneFadeSeconds     = 0.1
	toneSecondsPerRune  = 0.1
	toneMinDurationSecs = 1.0
	toneMaxDurationSecs = 10.0

	placeholderSuffix = " (placeholder)"
	deviceCPU         = "cpu"

	int16Max = 32767
)

// ToneEngine is the placeholder synthesis backend. It emits a fixed sine-wave
// test tone instead of speech, keeping every endpoint usable when no real
// model is reachable.
type ToneEngine struct {
	modelName    string
	quantization string
	sampleRate   int
	log          *logger.Logger
}

// NewToneEngine creates a placeholder engine that reports the given model
// descriptor in its status.
func NewToneEngine(modelName, quantization string, sampleRate int, log *logger.Logger) *ToneEngine {
	return &ToneEngine{
		modelName:    modelName,
		quantization: quantization,
		sampleRate:   sampleRate,
		log:          log,
	}
}

// Synthesize produces a sine-wave WAV sized to the input text. The voice
// sample and generation parameters are accepted but have no effect on the
// test tone.
func (e *ToneEngine) Synthesize(ctx context.Context, req core.SynthesisRequest) ([]byte, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("synthesis cancelled: %w", err)
	}

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = e.sampleRate
	}

	duration := clampDuration(float64(len([]rune(req.Text))) * toneSecondsPerRune)
	samples := renderTone(duration, sampleRate)

	data, err := encodeWAV(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	e.log.Info("Generated placeholder tone: %.1fs, %d bytes", duration, len(data))

	return data, nil
}

// Status reports the placeholder descriptor. The engine itself is always
// ready; RealModelAvailable tells callers speech output is a stand-in.
func (e *ToneEngine) Status() core.EngineStatus {
	return core.EngineStatus{
		ModelName:          e.modelName + placeholderSuffix,
		Loaded:             true,
		Quantization:       e.quantization,
		Device:             deviceCPU,
		RealModelAvailable: false,
	}
}

// Close is a no-op; the tone engine holds no resources.
func (e *ToneEngine) Close() error {
	return nil
}

func clampDuration(seconds float64) float64 {
	if seconds < toneMinDurationSecs {
		return toneMinDurationSecs
	}

	if seconds > toneMaxDurationSecs {
		return toneMaxDurationSecs
	}

	return seconds
}

// renderTone produces a faded sine wave as 16-bit PCM samples.
func renderTone(durationSecs float64, sampleRate int) []int16 {
	total := int(durationSecs * float64(sampleRate))
	fadeLen := int(toneFadeSeconds * float64(sampleRate))
	samples := make([]int16, total)

	for i := range samples {
		t := float64(i) / float64(sampleRate)
		value := toneAmplitude * math.Sin(2*math.Pi*toneFrequencyHz*t)

		gain := 1.0
		if i < fadeLen {
			gain = float64(i) / float64(fadeLen)
		} else if remaining := total - i; remaining < fadeLen {
			gain = float64(remaining) / float64(fadeLen)
		}

		samples[i] = int16(value * gain * int16Max)
	}

	return samples
}
