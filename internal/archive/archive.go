// Package archive packages generated audio clips into a single downloadable
// zip archive.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/book-expert/tts-studio/internal/lines"
)

// Clip file naming.
const (
	clipNameFormat    = "line_%03d.mp3"
	archiveNameFormat = "tts_audio_%s.zip"
	dateLayout        = "2006-01-02"
)

// ErrNoAudioReady is returned when no line holds audio to package.
var ErrNoAudioReady = errors.New("no audio files ready for download")

// Name returns the archive filename for the given day.
func Name(now time.Time) string {
	return fmt.Sprintf(archiveNameFormat, now.Format(dateLayout))
}

// ClipName returns the zero-padded, 1-indexed clip filename.
func ClipName(index int) string {
	return fmt.Sprintf(clipNameFormat, index+1)
}

// Build packages every line currently holding audio into one zip, in
// collection order, numbering clips over the packaged subset. Lines without
// audio are excluded; an entirely audio-less batch is an error.
func Build(batch []lines.Line) ([]byte, error) {
	ready := make([]lines.Line, 0, len(batch))

	for _, line := range batch {
		if line.Status.HasAudio() && line.Audio != nil {
			ready = append(ready, line)
		}
	}

	if len(ready) == 0 {
		return nil, ErrNoAudioReady
	}

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	for i, line := range ready {
		entry, err := writer.Create(ClipName(i))
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry: %w", err)
		}

		_, err = entry.Write(line.Audio)
		if err != nil {
			return nil, fmt.Errorf("failed to write archive entry: %w", err)
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
