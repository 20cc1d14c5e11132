package splitter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
	"github.com/ayamoughit/Tp4testMoughit/internal/splitter"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  splitter.Config
		wantErr bool
	}{
		{name: "valid", config: splitter.Config{ChunkSize: 300, Overlap: 0}},
		{name: "valid with overlap", config: splitter.Config{ChunkSize: 100, Overlap: 20}},
		{name: "zero chunk size", config: splitter.Config{ChunkSize: 0}, wantErr: true},
		{name: "negative chunk size", config: splitter.Config{ChunkSize: -1}, wantErr: true},
		{name: "negative overlap", config: splitter.Config{ChunkSize: 100, Overlap: -1}, wantErr: true},
		{name: "overlap equals chunk size", config: splitter.Config{ChunkSize: 100, Overlap: 100}, wantErr: true},
		{name: "overlap exceeds chunk size", config: splitter.Config{ChunkSize: 100, Overlap: 150}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, splitter.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := splitter.New(splitter.Config{ChunkSize: 10, Overlap: 10}, nil)
	assert.ErrorIs(t, err, splitter.ErrInvalidConfig)
}

func TestSplitEmptyDocument(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 300}, nil)
	require.NoError(t, err)

	segments := s.Split(document.Document{ID: "d1", Text: ""})
	assert.Empty(t, segments)
}

func TestSplitShortDocumentSingleSegment(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 300}, nil)
	require.NoError(t, err)

	doc := document.New("The capital of Morocco is Rabat.", "facts.txt")
	segments := s.Split(doc)

	require.Len(t, segments, 1)
	assert.Equal(t, doc.ID, segments[0].DocumentID)
	assert.Equal(t, 0, segments[0].Index)
	assert.Equal(t, doc.Text, segments[0].Text)
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 50, Overlap: 10}, nil)
	require.NoError(t, err)

	doc := document.New(strings.Repeat("lorem ipsum dolor sit amet. ", 40), "t.txt")
	segments := s.Split(doc)

	require.NotEmpty(t, segments)
	for _, seg := range segments {
		assert.LessOrEqual(t, len([]rune(seg.Text)), 50)
	}
}

// Every rune of the input must land in at least one segment: with zero
// overlap the concatenation of all segments reproduces the document exactly.
func TestSplitCoversFullTextNoOverlap(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 40, Overlap: 0}, nil)
	require.NoError(t, err)

	text := "First sentence here. Second sentence follows. Third one is a bit longer than the others. Fourth closes it out."
	segments := s.Split(document.Document{ID: "d", Text: text})

	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	assert.Equal(t, text, b.String())
}

// With overlap, adjacent segments share exactly Overlap runes, and
// stripping the shared prefix from each follow-up segment reconstructs
// the original text.
func TestSplitOverlapExactAndReconstructs(t *testing.T) {
	const overlap = 8
	s, err := splitter.New(splitter.Config{ChunkSize: 30, Overlap: overlap}, nil)
	require.NoError(t, err)

	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi"
	segments := s.Split(document.Document{ID: "d", Text: text})
	require.Greater(t, len(segments), 1)

	runes := []rune(text)
	var b strings.Builder
	for i, seg := range segments {
		segRunes := []rune(seg.Text)
		assert.Equal(t, string(runes[seg.Start:seg.End]), seg.Text)
		if i == 0 {
			b.WriteString(seg.Text)
			continue
		}
		prev := segments[i-1]
		assert.Equal(t, prev.End-overlap, seg.Start, "adjacent segments share exactly the overlap")
		b.WriteString(string(segRunes[overlap:]))
	}
	assert.Equal(t, text, b.String())
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 60, Overlap: 0}, nil)
	require.NoError(t, err)

	// The paragraph break sits inside the second half of the first window.
	text := "Short opening paragraph ends right here now.\n\nThe second paragraph continues with more words after the break."
	segments := s.Split(document.Document{ID: "d", Text: text})

	require.Greater(t, len(segments), 1)
	assert.Equal(t, "Short opening paragraph ends right here now.\n\n", segments[0].Text)
	assert.True(t, strings.HasPrefix(segments[1].Text, "The second paragraph"))
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 60, Overlap: 0}, nil)
	require.NoError(t, err)

	text := "This is the first sentence of the text. This second sentence runs past the window boundary for sure."
	segments := s.Split(document.Document{ID: "d", Text: text})

	require.Greater(t, len(segments), 1)
	assert.Equal(t, "This is the first sentence of the text.", segments[0].Text)
}

func TestSplitMultiByteRunes(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 10, Overlap: 0}, nil)
	require.NoError(t, err)

	text := strings.Repeat("héllo wörld ", 5)
	segments := s.Split(document.Document{ID: "d", Text: text})

	var b strings.Builder
	for _, seg := range segments {
		assert.LessOrEqual(t, len([]rune(seg.Text)), 10)
		b.WriteString(seg.Text)
	}
	assert.Equal(t, text, b.String())
}

func TestSplitDeterministic(t *testing.T) {
	s, err := splitter.New(splitter.Config{ChunkSize: 35, Overlap: 5}, nil)
	require.NoError(t, err)

	doc := document.Document{ID: "d", Text: strings.Repeat("one two three four five. ", 20)}
	first := s.Split(doc)
	second := s.Split(doc)
	assert.Equal(t, first, second)
}
