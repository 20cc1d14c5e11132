// Package vectorstore provides vector storage implementations.
//
// A store holds (vector, segment) pairs and answers cosine-similarity
// queries. One store holds vectors of one dimension, fixed by the first
// insert. Two implementations share the Store interface: MemoryStore, an
// exact full-scan reference, and ChromemStore, backed by the embedded
// chromem-go database.
package vectorstore

import (
	"context"
	"errors"
	"math"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
)

var (
	// ErrDimensionMismatch indicates a vector whose dimension differs from
	// the store's fixed dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrLengthMismatch indicates a batch where vectors and segments differ
	// in count.
	ErrLengthMismatch = errors.New("vectors and segments length mismatch")

	// ErrInvalidTopK indicates a non-positive result limit.
	ErrInvalidTopK = errors.New("top-k must be positive")

	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid vectorstore configuration")
)

// Match is a scored segment returned by a search, ordered best first.
type Match struct {
	Segment document.Segment
	Score   float32
}

// Store indexes embedded segments for similarity search. Insert-only;
// removal happens only through Reset.
type Store interface {
	// Add indexes a single (vector, segment) pair.
	Add(ctx context.Context, vec []float32, seg document.Segment) error

	// AddAll indexes a batch atomically: either every pair is indexed or
	// none is, and a concurrent search never observes a partial batch.
	AddAll(ctx context.Context, vecs [][]float32, segs []document.Segment) error

	// Search returns up to k matches with cosine similarity ≥ minScore,
	// ordered by descending score.
	Search(ctx context.Context, query []float32, k int, minScore float32) ([]Match, error)

	// Count reports the number of indexed segments.
	Count() int

	// Reset removes all indexed segments.
	Reset(ctx context.Context) error
}

// cosineSimilarity computes the cosine of the angle between two vectors of
// equal dimension. A zero vector yields 0, not NaN.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
