// main package for the voice-generator service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/Antique3e/voice-generator/internal/config"
	"github.com/Antique3e/voice-generator/internal/core"
	"github.com/Antique3e/voice-generator/internal/notify"
	"github.com/Antique3e/voice-generator/internal/objectstore"
	"github.com/Antique3e/voice-generator/internal/server"
	"github.com/Antique3e/voice-generator/internal/store"
	"github.com/Antique3e/voice-generator/internal/tts"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "voice-generator.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// setupNATS connects to NATS and builds the artifact mirror and the event
// notifier. Both are optional: when NATS is disabled the server runs on the
// local filesystem alone.
func setupNATS(
	cfg *config.Config,
	log *logger.Logger,
) (core.ObjectStore, server.GenerationNotifier, func(), error) {
	if !cfg.NATS.Enabled {
		log.Info("NATS disabled, running without artifact mirror and events")

		return nil, nil, func() {}, nil
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		natsConnection.Close()

		return nil, nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	mirror, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		natsConnection.Close()

		return nil, nil, nil, fmt.Errorf("failed to create audio object store: %w", err)
	}

	notifier := notify.New(natsConnection, cfg.NATS.GenerationSubject, log)

	log.Info("Connected to NATS at %s (bucket: %s)", cfg.NATS.URL, cfg.NATS.AudioObjectStoreBucket)

	return mirror, notifier, natsConnection.Close, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Build the stores backing uploads and generated audio
	voices, err := store.NewVoiceStore(cfg.Paths.VoiceInputDir)
	if err != nil {
		return fmt.Errorf("failed to create voice store: %w", err)
	}

	audio, err := store.NewAudioStore(cfg.Paths.AudioDir)
	if err != nil {
		return fmt.Errorf("failed to create audio store: %w", err)
	}

	// 5. Pick the synthesis engine (sidecar when reachable, tone otherwise)
	engine := tts.Select(cfg.TTS, finalLog)

	defer func() {
		closeErr := engine.Close()
		if closeErr != nil {
			finalLog.Error("Failed to close synthesis engine: %v", closeErr)
		}
	}()

	// 6. Optional NATS wiring for the artifact mirror and generation events
	mirror, notifier, closeNATS, err := setupNATS(cfg, finalLog)
	if err != nil {
		return err
	}

	defer closeNATS()

	// 7. Serve the API until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiServer := server.New(cfg, finalLog, engine, voices, audio, mirror, notifier)

	err = apiServer.Run(ctx)
	if err != nil {
		finalLog.Error("Server exited with error: %v", err)

		return fmt.Errorf("server exited: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
