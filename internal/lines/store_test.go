// Package lines_test tests the line collection and its transition rules.
package lines_test

import (
	"testing"

	"github.com/book-expert/tts-studio/internal/lines"
	"github.com/book-expert/tts-studio/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() (*lines.Store, *playback.MemoryBackend) {
	backend := playback.NewMemoryBackend()

	return lines.NewStore(playback.NewArena(backend)), backend
}

func TestSplitText(t *testing.T) {
	t.Parallel()

	split := lines.SplitText("first\n\n  second  \r\nthird\n   \n")

	require.Len(t, split, 3)
	assert.Equal(t, "first", split[0].Text)
	assert.Equal(t, "second", split[1].Text)
	assert.Equal(t, "third", split[2].Text)

	seen := make(map[string]bool)
	for _, line := range split {
		assert.Equal(t, lines.StatusIdle, line.Status)
		assert.NotEmpty(t, line.ID)
		assert.False(t, seen[line.ID])
		seen[line.ID] = true
	}
}

func TestStore_GenerateLifecycle(t *testing.T) {
	t.Parallel()

	store, _ := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))

	line, ok := store.Get(lineID)
	require.True(t, ok)
	assert.Equal(t, lines.StatusProcessing, line.Status)

	payload := make([]byte, 500)
	require.NoError(t, store.CompleteSuccess(lineID, payload))

	line, ok = store.Get(lineID)
	require.True(t, ok)
	assert.Equal(t, lines.StatusReady, line.Status)
	assert.Len(t, line.Audio, 500)
	assert.NotEmpty(t, line.Playable)
	assert.Empty(t, line.Err)
}

func TestStore_CompleteErrorHoldsNoAudio(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))
	require.NoError(t, store.CompleteError(lineID, "Rate limit exceeded. Please try again shortly."))

	line, ok := store.Get(lineID)
	require.True(t, ok)
	assert.Equal(t, lines.StatusError, line.Status)
	assert.Equal(t, "Rate limit exceeded. Please try again shortly.", line.Err)
	assert.Nil(t, line.Audio)
	assert.Equal(t, 0, backend.Live())
}

func TestStore_BeginProcessingGuardsInFlight(t *testing.T) {
	t.Parallel()

	store, _ := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))

	err = store.BeginProcessing(lineID)
	require.ErrorIs(t, err, lines.ErrAlreadyProcessing)
}

func TestStore_RegenerateReleasesPreviousResource(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))
	require.NoError(t, store.CompleteSuccess(lineID, []byte("take one")))

	require.NoError(t, store.BeginProcessing(lineID))
	assert.Equal(t, 0, backend.Live())

	require.NoError(t, store.CompleteSuccess(lineID, []byte("take two")))
	assert.Equal(t, 1, backend.Live())
}

func TestStore_EditReadyLineBecomesStaleAndKeepsAudio(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))
	require.NoError(t, store.CompleteSuccess(lineID, []byte("audio")))
	require.NoError(t, store.EditText(lineID, "Hello again"))

	line, ok := store.Get(lineID)
	require.True(t, ok)
	assert.Equal(t, lines.StatusStale, line.Status)
	assert.Equal(t, "Hello again", line.Text)
	assert.NotNil(t, line.Audio)
	assert.Equal(t, 1, backend.Live())
}

func TestStore_EditErrorLineRevertsToIdle(t *testing.T) {
	t.Parallel()

	store, _ := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))
	require.NoError(t, store.CompleteError(lineID, "boom"))
	require.NoError(t, store.EditText(lineID, "Hello fixed"))

	line, ok := store.Get(lineID)
	require.True(t, ok)
	assert.Equal(t, lines.StatusIdle, line.Status)
	assert.Empty(t, line.Err)
}

func TestStore_EditAndDeleteRejectedWhileProcessing(t *testing.T) {
	t.Parallel()

	store, _ := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))

	require.ErrorIs(t, store.EditText(lineID, "x"), lines.ErrLineProcessing)
	require.ErrorIs(t, store.Delete(lineID), lines.ErrLineProcessing)
}

func TestStore_DeleteReleasesResourceExactlyOnce(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("Hello")
	require.NoError(t, err)
	lineID := loaded[0].ID

	require.NoError(t, store.BeginProcessing(lineID))
	require.NoError(t, store.CompleteSuccess(lineID, []byte("audio")))
	require.NoError(t, store.Delete(lineID))

	_, ok := store.Get(lineID)
	assert.False(t, ok)

	acquired, released := backend.Counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, backend.Live())
}

func TestStore_ClearReleasesEverything(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("one\ntwo\nthree")
	require.NoError(t, err)

	for _, line := range loaded {
		require.NoError(t, store.BeginProcessing(line.ID))
		require.NoError(t, store.CompleteSuccess(line.ID, []byte(line.Text)))
	}

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Snapshot())
	assert.Equal(t, 0, backend.Live())
}

func TestStore_LoadReplacesCollectionAndResources(t *testing.T) {
	t.Parallel()

	store, backend := newStore()

	loaded, err := store.Load("old line")
	require.NoError(t, err)
	require.NoError(t, store.BeginProcessing(loaded[0].ID))
	require.NoError(t, store.CompleteSuccess(loaded[0].ID, []byte("audio")))

	replaced, err := store.Load("new line")
	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Equal(t, "new line", replaced[0].Text)
	assert.Equal(t, 0, backend.Live())
}

func TestStore_WithAudioIncludesStale(t *testing.T) {
	t.Parallel()

	store, _ := newStore()

	loaded, err := store.Load("a\nb\nc")
	require.NoError(t, err)

	// a: ready, b: stale, c: idle.
	require.NoError(t, store.BeginProcessing(loaded[0].ID))
	require.NoError(t, store.CompleteSuccess(loaded[0].ID, []byte("a")))
	require.NoError(t, store.BeginProcessing(loaded[1].ID))
	require.NoError(t, store.CompleteSuccess(loaded[1].ID, []byte("b")))
	require.NoError(t, store.EditText(loaded[1].ID, "b edited"))

	withAudio := store.WithAudio()
	require.Len(t, withAudio, 2)
	assert.Equal(t, loaded[0].ID, withAudio[0].ID)
	assert.Equal(t, loaded[1].ID, withAudio[1].ID)
}
