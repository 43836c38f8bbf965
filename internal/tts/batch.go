package tts

import (
	"context"
	"fmt"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-studio/internal/core"
	"github.com/book-expert/tts-studio/internal/lines"
)

// Log formats.
const (
	logFmtBatchStarted  = "Batch started: %d lines, %d to generate"
	logFmtLineGenerated = "Generated line %d/%d (%s): %d bytes"
	logFmtLineFailed    = "Line %d/%d (%s) failed: %s"
	logFmtBatchAborted  = "Batch aborted after %d lines: %v"
	logFmtBatchFinished = "Batch finished: %d generated, %d failed, %d skipped"
)

// ProgressFunc receives per-line progress. It is called with
// lines.StatusProcessing before a line's generation starts, then once more
// with lines.StatusReady or lines.StatusError and the attached result.
type ProgressFunc func(lineID string, status lines.Status, result *Result)

// BatchEngine drives generation across an ordered set of lines, one line
// fully resolved before the next begins. Two generations never run
// concurrently; the pacer spaces out requests to respect provider rate
// limits. A line failure is recorded through the progress callback and the
// batch continues with the next line.
type BatchEngine struct {
	generator *Generator
	pacer     core.Pacer
	log       *logger.Logger
}

// NewBatchEngine creates a batch engine over the given generator and pacer.
func NewBatchEngine(generator *Generator, pacer core.Pacer, log *logger.Logger) *BatchEngine {
	return &BatchEngine{
		generator: generator,
		pacer:     pacer,
		log:       log,
	}
}

// Run generates audio for every line in order, skipping lines that already
// hold audio or are in flight, which makes a run safely repeatable over a
// partially completed set. Canceling the context stops scheduling further
// lines and aborts the in-flight request; Run returns the context's error
// in that case and nil otherwise.
func (e *BatchEngine) Run(
	ctx context.Context,
	batch []lines.Line,
	voiceID string,
	onProgress ProgressFunc,
) error {
	if onProgress == nil {
		onProgress = func(string, lines.Status, *Result) {}
	}

	pending := 0

	for _, line := range batch {
		if !e.skip(line) {
			pending++
		}
	}

	e.log.Info(logFmtBatchStarted, len(batch), pending)

	generated, failed := 0, 0

	for i, line := range batch {
		if e.skip(line) {
			continue
		}

		err := e.pacer.Wait(ctx)
		if err != nil {
			e.log.Warn(logFmtBatchAborted, generated+failed, err)

			return fmt.Errorf("batch run aborted: %w", err)
		}

		onProgress(line.ID, lines.StatusProcessing, nil)

		result := e.generator.Generate(ctx, voiceID, line.Text)
		if result.Success {
			generated++
			e.log.Info(logFmtLineGenerated, i+1, len(batch), line.ID, len(result.Audio))
			onProgress(line.ID, lines.StatusReady, &result)
		} else {
			failed++
			e.log.Warn(logFmtLineFailed, i+1, len(batch), line.ID, result.Err)
			onProgress(line.ID, lines.StatusError, &result)
		}

		if ctx.Err() != nil {
			e.log.Warn(logFmtBatchAborted, generated+failed, ctx.Err())

			return fmt.Errorf("batch run aborted: %w", ctx.Err())
		}
	}

	e.log.Info(logFmtBatchFinished, generated, failed, len(batch)-pending)

	return nil
}

// skip reports whether a line should be left untouched: it already holds
// audio, or another request for it is in flight.
func (e *BatchEngine) skip(line lines.Line) bool {
	return line.Status.HasAudio() || line.Status == lines.StatusProcessing
}
