package tts

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestDelay is the fixed interval between synthesis requests.
const DefaultRequestDelay = 500 * time.Millisecond

// FixedPacer releases requests at a fixed interval. It is a token bucket
// with burst one, so the first request passes immediately and every later
// request waits out the remainder of the interval. Swapping the pacer is the
// intended way to change the delay policy without touching the batch engine.
type FixedPacer struct {
	limiter *rate.Limiter
}

// NewFixedPacer creates a pacer with the given interval. A non-positive
// interval falls back to DefaultRequestDelay.
func NewFixedPacer(interval time.Duration) *FixedPacer {
	if interval <= 0 {
		interval = DefaultRequestDelay
	}

	return &FixedPacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next request may be sent or the context ends.
func (p *FixedPacer) Wait(ctx context.Context) error {
	err := p.limiter.Wait(ctx)
	if err != nil {
		return fmt.Errorf("pacer wait aborted: %w", err)
	}

	return nil
}

// NopPacer never delays. Used in tests and single-shot regeneration, where
// throttling is not wanted.
type NopPacer struct{}

// Wait returns immediately unless the context has already ended.
func (NopPacer) Wait(ctx context.Context) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("pacer wait aborted: %w", err)
	}

	return nil
}
