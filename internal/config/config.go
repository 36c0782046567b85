// Package config provides the configuration structure for the voice-generator service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Default values applied after load so a sparse TOML file still yields a
// runnable service.
const (
	DefaultHTTPHost      = "0.0.0.0"
	DefaultHTTPPort      = 8000
	DefaultMaxUploadMB   = 25
	DefaultSampleRate    = 24000
	DefaultMaxTextLength = 5000
	DefaultTemperature   = 0.7
	DefaultSpeed         = 1.0
	DefaultEmotion       = "neutral"
	DefaultTimeoutSecs   = 300
	DefaultModelName     = "boson-ai/higgs-audio-v2"
	DefaultQuantization  = "full"
	DefaultVoiceInputDir = "outputs/voice_inputs"
	DefaultAudioDir      = "outputs/audio"
	DefaultLogsDir       = "logs"
)

// HTTPConfig holds the listener settings for the API server.
type HTTPConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// PathsConfig holds the on-disk layout of the service.
type PathsConfig struct {
	VoiceInputDir string `toml:"voice_input_dir"`
	AudioDir      string `toml:"audio_dir"`
	BaseLogsDir   string `toml:"base_logs_dir"`
}

// TTSConfig holds the synthesis backend settings. ServiceURL points at an
// optional sidecar running the real model; when empty or unreachable the
// built-in tone engine is used.
type TTSConfig struct {
	ModelName          string  `toml:"model_name"`
	Quantization       string  `toml:"quantization"`
	ServiceURL         string  `toml:"service_url"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	SampleRate         int     `toml:"sample_rate"`
	MaxTextLength      int     `toml:"max_text_length"`
	DefaultTemperature float64 `toml:"default_temperature"`
	DefaultSpeed       float64 `toml:"default_speed"`
	DefaultEmotion     string  `toml:"default_emotion"`
}

// NATSConfig holds the optional artifact mirror and event settings.
type NATSConfig struct {
	Enabled                bool   `toml:"enabled"`
	URL                    string `toml:"url"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
	GenerationSubject      string `toml:"generation_subject"`
}

// Config is the root configuration structure.
type Config struct {
	HTTP  HTTPConfig  `toml:"http"`
	Paths PathsConfig `toml:"paths"`
	TTS   TTSConfig   `toml:"tts"`
	NATS  NATSConfig  `toml:"nats"`
}

// Load loads the configuration for the voice-generator service and applies
// defaults for any fields the file leaves unset.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the package defaults.
func (c *Config) ApplyDefaults() {
	applyHTTPDefaults(&c.HTTP)
	applyPathsDefaults(&c.Paths)
	applyTTSDefaults(&c.TTS)
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func applyHTTPDefaults(httpCfg *HTTPConfig) {
	if httpCfg.Host == "" {
		httpCfg.Host = DefaultHTTPHost
	}

	if httpCfg.Port == 0 {
		httpCfg.Port = DefaultHTTPPort
	}

	if httpCfg.MaxUploadMB == 0 {
		httpCfg.MaxUploadMB = DefaultMaxUploadMB
	}
}

func applyPathsDefaults(paths *PathsConfig) {
	if paths.VoiceInputDir == "" {
		paths.VoiceInputDir = DefaultVoiceInputDir
	}

	if paths.AudioDir == "" {
		paths.AudioDir = DefaultAudioDir
	}

	if paths.BaseLogsDir == "" {
		paths.BaseLogsDir = DefaultLogsDir
	}
}

func applyTTSDefaults(tts *TTSConfig) {
	if tts.ModelName == "" {
		tts.ModelName = DefaultModelName
	}

	if tts.Quantization == "" {
		tts.Quantization = DefaultQuantization
	}

	if tts.TimeoutSeconds == 0 {
		tts.TimeoutSeconds = DefaultTimeoutSecs
	}

	if tts.SampleRate == 0 {
		tts.SampleRate = DefaultSampleRate
	}

	if tts.MaxTextLength == 0 {
		tts.MaxTextLength = DefaultMaxTextLength
	}

	if tts.DefaultTemperature == 0 {
		tts.DefaultTemperature = DefaultTemperature
	}

	if tts.DefaultSpeed == 0 {
		tts.DefaultSpeed = DefaultSpeed
	}

	if tts.DefaultEmotion == "" {
		tts.DefaultEmotion = DefaultEmotion
	}
}
