package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
)

var memoryTracer = otel.Tracer("ragchat.vectorstore.memory")

type memoryEntry struct {
	vec []float32
	seg document.Segment
}

// MemoryStore is the exact in-process reference store: full scan, cosine
// similarity, stable descending sort so equal scores keep insertion order
// (earlier insert wins). The RWMutex guarantees a search observes either
// none or all of a concurrent batch insert.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	entries []memoryEntry
	logger  *zap.Logger
}

// NewMemoryStore creates an empty MemoryStore. The dimension is fixed by
// the first inserted vector.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{logger: logger}
}

// Add indexes a single (vector, segment) pair.
func (s *MemoryStore) Add(ctx context.Context, vec []float32, seg document.Segment) error {
	return s.AddAll(ctx, [][]float32{vec}, []document.Segment{seg})
}

// AddAll indexes a batch atomically. Every vector is validated against the
// store dimension before anything is appended, so a failed batch leaves the
// store untouched.
func (s *MemoryStore) AddAll(ctx context.Context, vecs [][]float32, segs []document.Segment) error {
	_, span := memoryTracer.Start(ctx, "MemoryStore.AddAll")
	defer span.End()
	span.SetAttributes(attribute.Int("batch_size", len(vecs)))

	if len(vecs) != len(segs) {
		err := fmt.Errorf("%w: %d vectors, %d segments", ErrLengthMismatch, len(vecs), len(segs))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(vecs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	if dim == 0 {
		dim = len(vecs[0])
		if dim == 0 {
			err := fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	for i, vec := range vecs {
		if len(vec) != dim {
			err := fmt.Errorf("%w: vector %d has dimension %d, store expects %d",
				ErrDimensionMismatch, i, len(vec), dim)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	s.dim = dim
	for i := range vecs {
		vec := make([]float32, dim)
		copy(vec, vecs[i])
		s.entries = append(s.entries, memoryEntry{vec: vec, seg: segs[i]})
	}

	s.logger.Debug("indexed segments",
		zap.Int("batch_size", len(vecs)),
		zap.Int("total", len(s.entries)),
	)
	return nil
}

// Search scans all entries and returns up to k matches with similarity ≥
// minScore, best first. Ties keep insertion order.
func (s *MemoryStore) Search(ctx context.Context, query []float32, k int, minScore float32) ([]Match, error) {
	_, span := memoryTracer.Start(ctx, "MemoryStore.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", k))

	if k <= 0 {
		err := fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	if len(query) != s.dim {
		err := fmt.Errorf("%w: query has dimension %d, store expects %d",
			ErrDimensionMismatch, len(query), s.dim)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches := make([]Match, 0, len(s.entries))
	for _, e := range s.entries {
		score := cosineSimilarity(query, e.vec)
		if score >= minScore {
			matches = append(matches, Match{Segment: e.seg, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	span.SetAttributes(attribute.Int("matches", len(matches)))
	return matches, nil
}

// Count reports the number of indexed segments.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset removes all indexed segments and unfixes the dimension.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dim = 0
	return nil
}

var _ Store = (*MemoryStore)(nil)
