// Package notify_test tests the generation event publisher.
package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/Antique3e/voice-generator/internal/notify"
)

func TestGenerationCompletedPublishes(t *testing.T) {
	t.Parallel()

	opts := test.DefaultTestOptions
	opts.Port = -1
	natsServer := test.RunServer(&opts)

	defer natsServer.Shutdown()

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)

	defer natsConnection.Close()

	log, err := logger.New(t.TempDir(), "notify-test.log")
	require.NoError(t, err)

	const subject = "voice.generation.completed"

	received := make(chan *nats.Msg, 1)

	sub, err := natsConnection.ChanSubscribe(subject, received)
	require.NoError(t, err)

	defer func() { _ = sub.Unsubscribe() }()

	notifier := notify.New(natsConnection, subject, log)

	err = notifier.GenerationCompleted("abc-123", "abc-123__hello.wav", "hello", "voice-1", 42)
	require.NoError(t, err)

	select {
	case msg := <-received:
		var event notify.GenerationCompletedEvent

		require.NoError(t, json.Unmarshal(msg.Data, &event))
		require.Equal(t, "abc-123", event.ID)
		require.Equal(t, "abc-123__hello.wav", event.Filename)
		require.Equal(t, "hello", event.TextPreview)
		require.Equal(t, "voice-1", event.VoiceID)
		require.Equal(t, 42, event.SizeBytes)
		require.NotEmpty(t, event.CompletedAt)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generation event")
	}
}
