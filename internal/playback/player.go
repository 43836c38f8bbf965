package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultReadyTimeout bounds how long Play waits for playback to start.
const DefaultReadyTimeout = 5 * time.Second

// Sink opens playable resources for audible output. Implementations wrap an
// actual audio device or player process; tests use MockSink.
type Sink interface {
	Open(handle Handle) (Session, error)
}

// Session is one in-progress playback.
type Session interface {
	// Ready yields nil once playback has audibly started, or the failure
	// that prevented it. It yields at most once.
	Ready() <-chan error
	// Done is closed when playback finishes for any reason.
	Done() <-chan struct{}
	// Stop halts playback. Safe to call more than once.
	Stop()
}

// Player previews one payload at a time. Starting a new playback implicitly
// stops and releases the previous one, and the underlying resource is
// released on every exit path: natural end, explicit stop, failure, or
// teardown.
type Player struct {
	mu      sync.Mutex
	backend Backend
	sink    Sink
	timeout time.Duration

	current Session
	handle  Handle
	live    bool
}

// NewPlayer creates a Player over the given backend and sink. A
// non-positive timeout falls back to DefaultReadyTimeout.
func NewPlayer(backend Backend, sink Sink, timeout time.Duration) *Player {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	return &Player{
		mu:      sync.Mutex{},
		backend: backend,
		sink:    sink,
		timeout: timeout,
		current: nil,
		handle:  "",
		live:    false,
	}
}

// Play acquires a fresh playable resource from the payload and blocks until
// playback starts, fails, or the ready wait times out. A playback failure
// never affects the payload itself; the caller keeps ownership of it.
func (p *Player) Play(ctx context.Context, data []byte) error {
	p.Stop()

	if data == nil {
		return ErrNoPayload
	}

	if len(data) == 0 {
		return ErrEmptyPayload
	}

	handle, err := p.backend.Acquire(data)
	if err != nil {
		return fmt.Errorf("failed to acquire playable resource: %w", err)
	}

	session, err := p.sink.Open(handle)
	if err != nil {
		_ = p.backend.Release(handle)

		return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	err = p.awaitReady(ctx, session)
	if err != nil {
		session.Stop()
		_ = p.backend.Release(handle)

		return err
	}

	p.adopt(session, handle)

	return nil
}

func (p *Player) awaitReady(ctx context.Context, session Session) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case err := <-session.Ready():
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}

		return nil
	case <-timer.C:
		return ErrLoadTimeout
	case <-ctx.Done():
		return fmt.Errorf("playback canceled: %w", ctx.Err())
	}
}

// adopt installs the session as current and watches for its natural end so
// the resource is released even without an explicit Stop.
func (p *Player) adopt(session Session, handle Handle) {
	p.mu.Lock()
	p.current = session
	p.handle = handle
	p.live = true
	p.mu.Unlock()

	go func() {
		<-session.Done()
		p.releaseIf(session)
	}()
}

// releaseIf releases the player's resource only when the finished session is
// still the current one, so a session superseded by a new Play does not
// double-release.
func (p *Player) releaseIf(session Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.live || p.current != session {
		return
	}

	_ = p.backend.Release(p.handle)
	p.current = nil
	p.handle = ""
	p.live = false
}

// Stop halts the current playback, if any, and releases its resource.
func (p *Player) Stop() {
	p.mu.Lock()
	session := p.current
	handle := p.handle
	live := p.live
	p.current = nil
	p.handle = ""
	p.live = false
	p.mu.Unlock()

	if !live {
		return
	}

	session.Stop()
	_ = p.backend.Release(handle)
}

// IsPlaying reports whether a playback is currently live.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.live
}
