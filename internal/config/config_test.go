// Package config_test tests the configuration loading for the voice-generator service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antique3e/voice-generator/internal/config"
)

func TestUnmarshalConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[http]
host = "127.0.0.1"
port = 9000
max_upload_mb = 10

[paths]
voice_input_dir = "/var/lib/voice-generator/voice_inputs"
audio_dir = "/var/lib/voice-generator/audio"
base_logs_dir = "/var/log/voice-generator"

[tts]
model_name = "boson-ai/higgs-audio-v2"
quantization = "8bit"
service_url = "http://127.0.0.1:8100"
timeout_seconds = 120
sample_rate = 24000
max_text_length = 5000
default_temperature = 0.7
default_speed = 1.0
default_emotion = "neutral"

[nats]
enabled = true
url = "nats://127.0.0.1:4222"
audio_object_store_bucket = "GENERATED_AUDIO"
generation_subject = "voice.generation.completed"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 10, cfg.HTTP.MaxUploadMB)
	assert.Equal(t, "/var/lib/voice-generator/voice_inputs", cfg.Paths.VoiceInputDir)
	assert.Equal(t, "/var/lib/voice-generator/audio", cfg.Paths.AudioDir)
	assert.Equal(t, "/var/log/voice-generator", cfg.Paths.BaseLogsDir)
	assert.Equal(t, "boson-ai/higgs-audio-v2", cfg.TTS.ModelName)
	assert.Equal(t, "8bit", cfg.TTS.Quantization)
	assert.Equal(t, "http://127.0.0.1:8100", cfg.TTS.ServiceURL)
	assert.Equal(t, 120, cfg.TTS.TimeoutSeconds)
	assert.Equal(t, 24000, cfg.TTS.SampleRate)
	assert.Equal(t, 5000, cfg.TTS.MaxTextLength)
	assert.InEpsilon(t, 0.7, cfg.TTS.DefaultTemperature, 0.001)
	assert.InEpsilon(t, 1.0, cfg.TTS.DefaultSpeed, 0.001)
	assert.Equal(t, "neutral", cfg.TTS.DefaultEmotion)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "GENERATED_AUDIO", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "voice.generation.completed", cfg.NATS.GenerationSubject)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	cfg.ApplyDefaults()

	assert.Equal(t, config.DefaultHTTPHost, cfg.HTTP.Host)
	assert.Equal(t, config.DefaultHTTPPort, cfg.HTTP.Port)
	assert.Equal(t, config.DefaultMaxUploadMB, cfg.HTTP.MaxUploadMB)
	assert.Equal(t, config.DefaultVoiceInputDir, cfg.Paths.VoiceInputDir)
	assert.Equal(t, config.DefaultAudioDir, cfg.Paths.AudioDir)
	assert.Equal(t, config.DefaultLogsDir, cfg.Paths.BaseLogsDir)
	assert.Equal(t, config.DefaultModelName, cfg.TTS.ModelName)
	assert.Equal(t, config.DefaultQuantization, cfg.TTS.Quantization)
	assert.Empty(t, cfg.TTS.ServiceURL)
	assert.Equal(t, config.DefaultTimeoutSecs, cfg.TTS.TimeoutSeconds)
	assert.Equal(t, config.DefaultSampleRate, cfg.TTS.SampleRate)
	assert.Equal(t, config.DefaultMaxTextLength, cfg.TTS.MaxTextLength)
	assert.InEpsilon(t, config.DefaultTemperature, cfg.TTS.DefaultTemperature, 0.001)
	assert.InEpsilon(t, config.DefaultSpeed, cfg.TTS.DefaultSpeed, 0.001)
	assert.Equal(t, config.DefaultEmotion, cfg.TTS.DefaultEmotion)
	assert.False(t, cfg.NATS.Enabled)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.HTTP.Port = 8080
	cfg.TTS.Quantization = "4bit"

	cfg.ApplyDefaults()

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "4bit", cfg.TTS.Quantization)
}

func TestListenAddr(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 8000

	assert.Equal(t, "127.0.0.1:8000", cfg.ListenAddr())
}
