// Package archive_test tests clip packaging.
package archive_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/book-expert/tts-studio/internal/archive"
	"github.com/book-expert/tts-studio/internal/lines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 29, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "tts_audio_2026-08-29.zip", archive.Name(now))
}

func TestClipName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line_001.mp3", archive.ClipName(0))
	assert.Equal(t, "line_012.mp3", archive.ClipName(11))
	assert.Equal(t, "line_100.mp3", archive.ClipName(99))
}

func TestBuild_PackagesReadyAndStaleInOrder(t *testing.T) {
	t.Parallel()

	batch := []lines.Line{
		{ID: "a", Text: "one", Status: lines.StatusReady, Audio: []byte("clip-one")},
		{ID: "b", Text: "two", Status: lines.StatusIdle},
		{ID: "c", Text: "three", Status: lines.StatusStale, Audio: []byte("clip-three")},
		{ID: "d", Text: "four", Status: lines.StatusError},
	}

	data, err := archive.Build(batch)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)

	// Clip numbering runs over the packaged subset, not the full batch.
	assert.Equal(t, "line_001.mp3", reader.File[0].Name)
	assert.Equal(t, "line_002.mp3", reader.File[1].Name)

	first, err := reader.File[0].Open()
	require.NoError(t, err)

	content, err := io.ReadAll(first)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.Equal(t, []byte("clip-one"), content)
}

func TestBuild_NoAudioReady(t *testing.T) {
	t.Parallel()

	batch := []lines.Line{
		{ID: "a", Text: "one", Status: lines.StatusIdle},
		{ID: "b", Text: "two", Status: lines.StatusError},
	}

	_, err := archive.Build(batch)
	require.ErrorIs(t, err, archive.ErrNoAudioReady)
}
