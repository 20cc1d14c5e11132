// Package splitter turns documents into bounded, optionally overlapping
// segments for embedding. Splitting is a pure function over the document
// text: the same input always produces identical segment boundaries.
package splitter

import (
	"errors"
	"fmt"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig indicates invalid chunking parameters.
	ErrInvalidConfig = errors.New("invalid splitter configuration")
)

// Config holds splitting parameters. Sizes are in runes, not bytes, so
// multi-byte text chunks the same way regardless of encoding width.
type Config struct {
	// ChunkSize is the maximum segment length in runes.
	ChunkSize int `koanf:"chunk_size"`

	// Overlap is the number of runes consecutive segments share.
	// Must be smaller than ChunkSize.
	Overlap int `koanf:"overlap"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk size), got %d", ErrInvalidConfig, c.Overlap)
	}
	return nil
}

// Splitter splits document text into segments, preferring paragraph and
// sentence boundaries over hard cuts.
type Splitter struct {
	config Config
	logger *zap.Logger
}

// New creates a Splitter with the given configuration.
func New(config Config, logger *zap.Logger) (*Splitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{config: config, logger: logger}, nil
}

// Split produces the ordered segments of a document. Every rune of the input
// appears in at least one segment; adjacent segments share exactly
// Config.Overlap runes (no text is skipped).
func (s *Splitter) Split(doc document.Document) []document.Segment {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	var segments []document.Segment
	start := 0
	for {
		end := start + s.config.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.adjustToBoundary(runes, start, end)
		}

		segments = append(segments, document.Segment{
			DocumentID: doc.ID,
			Index:      len(segments),
			Start:      start,
			End:        end,
			Text:       string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
		start = end - s.config.Overlap
	}

	s.logger.Debug("split document",
		zap.String("document_id", doc.ID),
		zap.Int("runes", len(runes)),
		zap.Int("segments", len(segments)),
	)

	return segments
}

// adjustToBoundary moves the window end backward to the closest natural
// break, searching only the second half of the window so segments do not
// degenerate. Preference order: paragraph break, sentence end, word gap.
// The adjusted end must still advance the window past the overlap;
// otherwise the hard cut stands.
func (s *Splitter) adjustToBoundary(runes []rune, start, hardEnd int) int {
	lo := start + (hardEnd-start)/2

	// Paragraph break: cut after the second newline of "\n\n".
	for i := hardEnd - 1; i > lo; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			if end := i + 1; end-start > s.config.Overlap {
				return end
			}
		}
	}

	// Sentence end: cut after the terminator.
	for i := hardEnd - 1; i > lo; i-- {
		if isSentenceEnd(runes[i]) {
			if end := i + 1; end-start > s.config.Overlap {
				return end
			}
		}
	}

	// Word gap: cut before the space.
	for i := hardEnd - 1; i > lo; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			if i-start > s.config.Overlap {
				return i
			}
		}
	}

	return hardEnd
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
