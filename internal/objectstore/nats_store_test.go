// Package objectstore_test tests the NATS archive delivery store.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/book-expert/tts-studio/internal/objectstore"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
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

func newTestStore(t *testing.T, bucketName string) *objectstore.ClipStore {
	t.Helper()

	natsServer, natsConnection := startTestServer(t)
	t.Cleanup(natsServer.Shutdown)
	t.Cleanup(natsConnection.Close)

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, bucketName)
	require.NoError(t, err)

	return store
}

func TestClipStore_UploadDownload(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "archives")

	ctx := context.Background()
	key := "tts_audio_2026-08-29.zip"
	uploadData := []byte("PK\x03\x04 not a real archive, but close enough")

	err := store.Upload(ctx, key, uploadData)
	require.NoError(t, err)

	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)

	require.Equal(t, uploadData, downloadData)
}

func TestClipStore_UploadOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "archives-overwrite")

	ctx := context.Background()
	key := "tts_audio_2026-08-29.zip"

	require.NoError(t, store.Upload(ctx, key, []byte("first")))
	require.NoError(t, store.Upload(ctx, key, []byte("second")))

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)
}

func TestClipStore_Keys(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "archives-keys")

	ctx := context.Background()

	keys, err := store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, store.Upload(ctx, "line_001.mp3", []byte("a")))
	require.NoError(t, store.Upload(ctx, "line_002.mp3", []byte("b")))

	keys, err = store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"line_001.mp3", "line_002.mp3"}, keys)
}

func TestClipStore_DownloadMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "archives-missing")

	_, err := store.Download(context.Background(), "nope.zip")
	require.Error(t, err)
}
