package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
)

var chromemTracer = otel.Tracer("ragchat.vectorstore.chromem")

// ChromemConfig holds configuration for the chromem-go backed store.
type ChromemConfig struct {
	// Collection is the collection name. Default: "segments".
	Collection string `koanf:"collection"`

	// Concurrency bounds chromem's parallel document insertion.
	// Default: 1 (inserts stay in caller order).
	Concurrency int `koanf:"concurrency"`
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "segments"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements Store on top of chromem-go, an embeddable pure-Go
// vector database, in in-memory mode. Scores are exact cosine similarity.
//
// Deviation from MemoryStore: when two segments score exactly equal, their
// relative order is backend-defined rather than insertion order. Rankings
// otherwise agree with the reference store within float tolerance.
type ChromemStore struct {
	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	config     ChromemConfig
	dim        int
	logger     *zap.Logger
}

// NewChromemStore creates a ChromemStore with an in-memory database.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(config.Collection, nil, rejectEmbeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", config.Collection, err)
	}

	logger.Info("chromem store initialized", zap.String("collection", config.Collection))

	return &ChromemStore{
		db:         db,
		collection: collection,
		config:     config,
		logger:     logger,
	}, nil
}

// rejectEmbeddingFunc guards against chromem embedding on our behalf: every
// document and query carries a precomputed vector.
func rejectEmbeddingFunc(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

// Add indexes a single (vector, segment) pair.
func (s *ChromemStore) Add(ctx context.Context, vec []float32, seg document.Segment) error {
	return s.AddAll(ctx, [][]float32{vec}, []document.Segment{seg})
}

// AddAll indexes a batch. Lengths and dimensions are validated before any
// document reaches the collection.
func (s *ChromemStore) AddAll(ctx context.Context, vecs [][]float32, segs []document.Segment) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.AddAll")
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

	docs := make([]chromem.Document, len(segs))
	for i, seg := range segs {
		docs[i] = chromem.Document{
			ID:        segmentID(seg),
			Content:   seg.Text,
			Embedding: vecs[i],
			Metadata: map[string]string{
				"document_id": seg.DocumentID,
				"index":       strconv.Itoa(seg.Index),
				"start":       strconv.Itoa(seg.Start),
				"end":         strconv.Itoa(seg.End),
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, s.config.Concurrency); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents: %w", err)
	}

	s.dim = dim
	s.logger.Debug("indexed segments",
		zap.Int("batch_size", len(docs)),
		zap.Int("total", s.collection.Count()),
	)
	return nil
}

// Search queries the collection with a precomputed embedding and filters by
// minScore client-side.
func (s *ChromemStore) Search(ctx context.Context, query []float32, k int, minScore float32) ([]Match, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", k))

	if k <= 0 {
		err := fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if len(query) != s.dim {
		err := fmt.Errorf("%w: query has dimension %d, store expects %d",
			ErrDimensionMismatch, len(query), s.dim)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	n := k
	if n > count {
		n = count
	}

	results, err := s.collection.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		if res.Similarity < minScore {
			continue
		}
		matches = append(matches, Match{
			Segment: segmentFromResult(res),
			Score:   res.Similarity,
		})
	}

	span.SetAttributes(attribute.Int("matches", len(matches)))
	return matches, nil
}

// Count reports the number of indexed segments.
func (s *ChromemStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Count()
}

// Reset drops and recreates the collection.
func (s *ChromemStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.config.Collection); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	collection, err := s.db.CreateCollection(s.config.Collection, nil, rejectEmbeddingFunc)
	if err != nil {
		return fmt.Errorf("recreating collection: %w", err)
	}
	s.collection = collection
	s.dim = 0
	return nil
}

func segmentID(seg document.Segment) string {
	return seg.DocumentID + "#" + strconv.Itoa(seg.Index)
}

func segmentFromResult(res chromem.Result) document.Segment {
	index, _ := strconv.Atoi(res.Metadata["index"])
	start, _ := strconv.Atoi(res.Metadata["start"])
	end, _ := strconv.Atoi(res.Metadata["end"])
	return document.Segment{
		DocumentID: res.Metadata["document_id"],
		Index:      index,
		Start:      start,
		End:        end,
		Text:       res.Content,
	}
}

var _ Store = (*ChromemStore)(nil)
