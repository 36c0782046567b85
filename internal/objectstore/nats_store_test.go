// Package objectstore_test tests the NATS audio artifact mirror.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/Antique3e/voice-generator/internal/objectstore"
)

// startTestServer starts an in-memory NATS server with JetStream enabled.
func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNatsObjectStoreMirrorRoundTrip(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	mirror, err := objectstore.New(jetstreamContext, "GENERATED_AUDIO")
	require.NoError(t, err)

	ctx := context.Background()
	key := "abc-123__hello.wav"
	audio := []byte("riff-wav-bytes")

	require.NoError(t, mirror.Upload(ctx, key, audio))

	downloaded, err := mirror.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, audio, downloaded)
}

func TestNatsObjectStoreBindsToExistingBucket(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	first, err := objectstore.New(jetstreamContext, "AUDIO_TWICE")
	require.NoError(t, err)
	require.NoError(t, first.Upload(context.Background(), "one.wav", []byte("a")))

	second, err := objectstore.New(jetstreamContext, "AUDIO_TWICE")
	require.NoError(t, err)

	data, err := second.Download(context.Background(), "one.wav")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), data)
}

func TestNatsObjectStoreDownloadMissingKey(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	mirror, err := objectstore.New(jetstreamContext, "AUDIO_EMPTY")
	require.NoError(t, err)

	_, err = mirror.Download(context.Background(), "missing.wav")
	require.Error(t, err)
}
