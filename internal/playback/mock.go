package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMockAcquire is returned by a MemoryBackend configured to fail.
var ErrMockAcquire = errors.New("mock acquire failure")

// MemoryBackend is an in-memory Backend for tests. It counts acquisitions
// and releases so resource-safety properties can be asserted exactly.
type MemoryBackend struct {
	mu       sync.Mutex
	next     int
	payloads map[Handle][]byte
	acquired int
	released int
	failNext bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		mu:       sync.Mutex{},
		next:     0,
		payloads: make(map[Handle][]byte),
		acquired: 0,
		released: 0,
		failNext: false,
	}
}

// FailNextAcquire makes the next Acquire call fail.
func (b *MemoryBackend) FailNextAcquire() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failNext = true
}

// Acquire stores a copy of the payload under a fresh handle.
func (b *MemoryBackend) Acquire(data []byte) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failNext {
		b.failNext = false

		return "", ErrMockAcquire
	}

	b.next++
	handle := Handle(fmt.Sprintf("mem-%d", b.next))

	stored := make([]byte, len(data))
	copy(stored, data)
	b.payloads[handle] = stored
	b.acquired++

	return handle, nil
}

// Release frees the handle. Releasing an unknown handle is an error so tests
// catch double releases.
func (b *MemoryBackend) Release(handle Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.payloads[handle]
	if !ok {
		return fmt.Errorf("release of unknown handle %q", handle)
	}

	delete(b.payloads, handle)
	b.released++

	return nil
}

// Live reports how many handles are currently outstanding.
func (b *MemoryBackend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.payloads)
}

// Counts returns total acquisitions and releases.
func (b *MemoryBackend) Counts() (acquired, released int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.acquired, b.released
}

// MockSink is a Sink for tests with configurable ready behavior.
type MockSink struct {
	// ReadyDelay postpones the ready signal; use it to exercise the load
	// timeout path.
	ReadyDelay time.Duration
	// ReadyErr, when set, is delivered instead of a successful start.
	ReadyErr error
	// OpenErr, when set, fails Open itself.
	OpenErr error

	mu       sync.Mutex
	sessions []*MockSession
}

// Open starts a mock session for the handle.
func (s *MockSink) Open(handle Handle) (Session, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}

	session := newMockSession(handle, s.ReadyDelay, s.ReadyErr)

	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()

	return session, nil
}

// Sessions returns every session opened so far.
func (s *MockSink) Sessions() []*MockSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*MockSession, len(s.sessions))
	copy(out, s.sessions)

	return out
}

// MockSession is a controllable playback session.
type MockSession struct {
	HandleUsed Handle

	ready    chan error
	done     chan struct{}
	stopOnce sync.Once
}

func newMockSession(handle Handle, readyDelay time.Duration, readyErr error) *MockSession {
	session := &MockSession{
		HandleUsed: handle,
		ready:      make(chan error, 1),
		done:       make(chan struct{}),
		stopOnce:   sync.Once{},
	}

	if readyDelay > 0 {
		go func() {
			time.Sleep(readyDelay)
			session.ready <- readyErr
		}()
	} else {
		session.ready <- readyErr
	}

	return session
}

// Ready yields the configured start outcome.
func (m *MockSession) Ready() <-chan error {
	return m.ready
}

// Done is closed when the session ends.
func (m *MockSession) Done() <-chan struct{} {
	return m.done
}

// Stop ends the session.
func (m *MockSession) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Finish simulates natural end-of-playback.
func (m *MockSession) Finish() {
	m.stopOnce.Do(func() { close(m.done) })
}
