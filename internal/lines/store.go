package lines

import (
	"errors"
	"fmt"
	"sync"

	"github.com/book-expert/tts-studio/internal/playback"
)

// Transition guard errors.
var (
	// ErrLineNotFound means the given line ID is not in the collection.
	ErrLineNotFound = errors.New("line not found")
	// ErrLineProcessing rejects mutations against a line whose generation
	// is still in flight. The caller must wait for it to resolve.
	ErrLineProcessing = errors.New("line is processing")
	// ErrAlreadyProcessing rejects a second generation request for a line
	// that is already in flight.
	ErrAlreadyProcessing = errors.New("generation already in progress")
)

// Store is the line collection. Reads hand out snapshots so a consumer
// never observes a half-updated collection.
type Store struct {
	mu    sync.RWMutex
	lines []Line
	arena *playback.Arena
}

// NewStore creates an empty store whose playable resources are tracked in
// the given arena.
func NewStore(arena *playback.Arena) *Store {
	return &Store{
		mu:    sync.RWMutex{},
		lines: nil,
		arena: arena,
	}
}

// Load replaces the whole collection with lines split from the given text
// blob, releasing every playable resource held by the previous set.
func (s *Store) Load(text string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.arena.ReleaseAll()
	if err != nil {
		return nil, fmt.Errorf("failed to release playable resources: %w", err)
	}

	s.lines = SplitText(text)

	return s.snapshotLocked(), nil
}

// Snapshot returns a copy of the collection in order.
func (s *Store) Snapshot() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Line {
	snapshot := make([]Line, len(s.lines))
	copy(snapshot, s.lines)

	return snapshot
}

// Get returns the line with the given ID.
func (s *Store) Get(lineID string) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return Line{}, false
	}

	return s.lines[idx], true
}

func (s *Store) indexLocked(lineID string) int {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i
		}
	}

	return -1
}

// BeginProcessing marks a line as in flight. Allowed from idle, error,
// ready and stale (a regenerate); rejected while already processing. Any
// previous audio is dropped and its playable resource released, since the
// line no longer carries audio that matches a settled state.
func (s *Store) BeginProcessing(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	if s.lines[idx].Status == StatusProcessing {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessing, lineID)
	}

	err := s.dropAudioLocked(idx)
	if err != nil {
		return err
	}

	s.lines[idx].Status = StatusProcessing
	s.lines[idx].Err = ""

	return nil
}

// CompleteSuccess stores the generated audio on an in-flight line, acquires
// its playable resource and marks it ready.
func (s *Store) CompleteSuccess(lineID string, audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	handle, err := s.arena.Acquire(lineID, audio)
	if err != nil {
		return fmt.Errorf("failed to acquire playable resource: %w", err)
	}

	s.lines[idx].Status = StatusReady
	s.lines[idx].Audio = audio
	s.lines[idx].Playable = handle
	s.lines[idx].Err = ""

	return nil
}

// CompleteError records a generation failure. The line holds the failure
// message and no audio.
func (s *Store) CompleteError(lineID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	err := s.dropAudioLocked(idx)
	if err != nil {
		return err
	}

	s.lines[idx].Status = StatusError
	s.lines[idx].Err = message

	return nil
}

// EditText replaces a line's text. Rejected while processing. A ready line
// keeps its audio but becomes stale, so the previous take stays playable
// until regenerated; an error line reverts to idle.
func (s *Store) EditText(lineID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	line := &s.lines[idx]

	if line.Status == StatusProcessing {
		return fmt.Errorf("%w: %s", ErrLineProcessing, lineID)
	}

	line.Text = text

	switch line.Status {
	case StatusReady:
		line.Status = StatusStale
	case StatusError:
		line.Status = StatusIdle
		line.Err = ""
	case StatusIdle, StatusStale, StatusProcessing:
	}

	return nil
}

// Delete removes a line, releasing its playable resource first. Rejected
// while processing.
func (s *Store) Delete(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	if s.lines[idx].Status == StatusProcessing {
		return fmt.Errorf("%w: %s", ErrLineProcessing, lineID)
	}

	err := s.arena.Release(lineID)
	if err != nil {
		return fmt.Errorf("failed to release playable resource: %w", err)
	}

	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)

	return nil
}

// Clear releases every playable resource and empties the collection.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.arena.ReleaseAll()
	if err != nil {
		return fmt.Errorf("failed to release playable resources: %w", err)
	}

	s.lines = nil

	return nil
}

// WithAudio returns, in order, every line currently holding audio.
func (s *Store) WithAudio() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, 0, len(s.lines))

	for _, line := range s.lines {
		if line.Status.HasAudio() {
			out = append(out, line)
		}
	}

	return out
}

// dropAudioLocked clears a line's audio and releases its playable resource.
func (s *Store) dropAudioLocked(idx int) error {
	line := &s.lines[idx]

	if line.Audio == nil && line.Playable == "" {
		return nil
	}

	err := s.arena.Release(line.ID)
	if err != nil {
		return fmt.Errorf("failed to release playable resource: %w", err)
	}

	line.Audio = nil
	line.Playable = ""

	return nil
}
