// Package playback manages ephemeral playable resources derived from audio
// payloads: their acquisition, preview playback, and guaranteed release.
//
// A playable resource must never outlive the payload it was derived from, so
// handles are tracked in an arena keyed by their owning line rather than
// left to caller discipline.
package playback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Playback failure taxonomy. Callers distinguish a missing payload from an
// empty one, and a decode failure from a load timeout.
var (
	ErrNoPayload    = errors.New("no audio data available")
	ErrEmptyPayload = errors.New("empty audio payload")
	ErrDecodeFailed = errors.New("audio playback failed")
	ErrLoadTimeout  = errors.New("audio loading timeout")
)

// Handle is an opaque locator for an acquired playable resource.
type Handle string

// Backend is the capability for turning a binary payload into a playable
// resource and destroying it again. Every Acquire must be paired with a
// Release on all exit paths.
type Backend interface {
	Acquire(data []byte) (Handle, error)
	Release(handle Handle) error
}

// FileBackend materializes payloads as temporary audio files. This is the
// runtime equivalent of an object URL: cheap to mint, must be revoked.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a backend writing under dir, or the system temp
// directory when dir is empty.
func NewFileBackend(dir string) *FileBackend {
	if dir == "" {
		dir = os.TempDir()
	}

	return &FileBackend{dir: dir}
}

// Acquire writes the payload to a fresh temp file and returns its path.
func (b *FileBackend) Acquire(data []byte) (Handle, error) {
	file, err := os.CreateTemp(b.dir, "clip-*.mp3")
	if err != nil {
		return "", fmt.Errorf("failed to create playable file: %w", err)
	}

	_, writeErr := file.Write(data)
	closeErr := file.Close()

	if writeErr != nil {
		_ = os.Remove(file.Name())

		return "", fmt.Errorf("failed to write playable file: %w", writeErr)
	}

	if closeErr != nil {
		_ = os.Remove(file.Name())

		return "", fmt.Errorf("failed to close playable file: %w", closeErr)
	}

	return Handle(filepath.Clean(file.Name())), nil
}

// Release removes the file behind the handle. Releasing an already-removed
// handle is not an error.
func (b *FileBackend) Release(handle Handle) error {
	err := os.Remove(string(handle))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release playable file: %w", err)
	}

	return nil
}

// Arena tracks one playable handle per owner so release is always reachable
// from the owner's lifecycle. Acquiring for an owner that already holds a
// handle releases the old one first.
type Arena struct {
	mu      sync.Mutex
	backend Backend
	handles map[string]Handle
}

// NewArena creates an empty arena over the given backend.
func NewArena(backend Backend) *Arena {
	return &Arena{
		mu:      sync.Mutex{},
		backend: backend,
		handles: make(map[string]Handle),
	}
}

// Acquire mints a playable handle for ownerID from the payload, replacing
// and releasing any handle the owner already held.
func (a *Arena) Acquire(ownerID string, data []byte) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if old, ok := a.handles[ownerID]; ok {
		delete(a.handles, ownerID)

		err := a.backend.Release(old)
		if err != nil {
			return "", err
		}
	}

	handle, err := a.backend.Acquire(data)
	if err != nil {
		return "", err
	}

	a.handles[ownerID] = handle

	return handle, nil
}

// Release frees the owner's handle, if any.
func (a *Arena) Release(ownerID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	handle, ok := a.handles[ownerID]
	if !ok {
		return nil
	}

	delete(a.handles, ownerID)

	return a.backend.Release(handle)
}

// ReleaseAll frees every tracked handle. Used when the owning collection is
// cleared or torn down.
func (a *Arena) ReleaseAll() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error

	for ownerID, handle := range a.handles {
		delete(a.handles, ownerID)

		err := a.backend.Release(handle)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Handle returns the owner's current handle, if any.
func (a *Arena) Handle(ownerID string) (Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	handle, ok := a.handles[ownerID]

	return handle, ok
}

// Len reports how many handles are live.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.handles)
}
