package ingest_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
	"github.com/ayamoughit/Tp4testMoughit/internal/embedding"
	"github.com/ayamoughit/Tp4testMoughit/internal/ingest"
	"github.com/ayamoughit/Tp4testMoughit/internal/splitter"
	"github.com/ayamoughit/Tp4testMoughit/internal/vectorstore"
)

// recordingEmbedder returns a constant vector per text and records batch
// sizes. failAfter > 0 makes the n-th call fail.
type recordingEmbedder struct {
	batches   []int
	calls     int
	failAfter int
}

func (e *recordingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (e *recordingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failAfter > 0 && e.calls >= e.failAfter {
		return nil, fmt.Errorf("%w: quota", embedding.ErrUnavailable)
	}
	e.batches = append(e.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newPipeline(t *testing.T, config ingest.Config, emb embedding.Embedder, store vectorstore.Store) *ingest.Pipeline {
	t.Helper()
	sp, err := splitter.New(splitter.Config{ChunkSize: 40, Overlap: 0}, nil)
	require.NoError(t, err)
	p, err := ingest.New(config, sp, emb, store, nil)
	require.NoError(t, err)
	return p
}

func TestNewValidation(t *testing.T) {
	sp, err := splitter.New(splitter.Config{ChunkSize: 40}, nil)
	require.NoError(t, err)

	_, err = ingest.New(ingest.Config{BatchSize: -1}, sp, &recordingEmbedder{}, vectorstore.NewMemoryStore(nil), nil)
	assert.ErrorIs(t, err, ingest.ErrInvalidConfig)

	_, err = ingest.New(ingest.Config{}, nil, &recordingEmbedder{}, vectorstore.NewMemoryStore(nil), nil)
	assert.ErrorIs(t, err, ingest.ErrInvalidConfig)
}

func TestIngestIndexesAllSegments(t *testing.T) {
	store := vectorstore.NewMemoryStore(nil)
	p := newPipeline(t, ingest.Config{}, &recordingEmbedder{}, store)

	docs := []document.Document{
		document.New(strings.Repeat("alpha beta gamma. ", 10), "a.txt"),
		document.New("short one.", "b.txt"),
	}

	total, err := p.Ingest(context.Background(), docs)
	require.NoError(t, err)
	assert.Greater(t, total, 2)
	assert.Equal(t, total, store.Count())
}

func TestIngestBatchesEmbeddingCalls(t *testing.T) {
	emb := &recordingEmbedder{}
	store := vectorstore.NewMemoryStore(nil)
	p := newPipeline(t, ingest.Config{BatchSize: 3}, emb, store)

	// 40-rune chunks over ~280 runes gives 7 segments.
	text := strings.Repeat("0123456789012345678901234567890123456789", 7)
	_, err := p.Ingest(context.Background(), []document.Document{document.New(text, "t.txt")})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 1}, emb.batches)
}

// A failing document leaves earlier documents indexed and itself absent.
func TestIngestStopsAtFailingDocument(t *testing.T) {
	emb := &recordingEmbedder{failAfter: 2}
	store := vectorstore.NewMemoryStore(nil)
	p := newPipeline(t, ingest.Config{}, emb, store)

	docs := []document.Document{
		document.New("first document text.", "a.txt"),
		document.New("second document text.", "b.txt"),
		document.New("third document text.", "c.txt"),
	}

	total, err := p.Ingest(context.Background(), docs)
	assert.ErrorIs(t, err, embedding.ErrUnavailable)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, store.Count())
}

func TestIngestSkipsEmptyDocument(t *testing.T) {
	store := vectorstore.NewMemoryStore(nil)
	p := newPipeline(t, ingest.Config{}, &recordingEmbedder{}, store)

	total, err := p.Ingest(context.Background(), []document.Document{
		document.New("", "empty.txt"),
		document.New("real content here.", "real.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestIngestSource(t *testing.T) {
	store := vectorstore.NewMemoryStore(nil)
	p := newPipeline(t, ingest.Config{}, &recordingEmbedder{}, store)

	src := document.NewStaticSource(document.New("some content.", "s.txt"))
	total, err := p.IngestSource(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = p.IngestSource(context.Background(), document.NewStaticSource())
	assert.ErrorIs(t, err, document.ErrNoDocuments)
}
