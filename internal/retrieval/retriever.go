package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/embedding"
	"github.com/ayamoughit/Tp4testMoughit/internal/vectorstore"
	"github.com/ayamoughit/Tp4testMoughit/internal/websearch"
)

// VectorRetriever answers queries from an embedding store: embed the query,
// search, return the matches as scored snippets.
type VectorRetriever struct {
	store      vectorstore.Store
	embedder   embedding.Embedder
	maxResults int
	minScore   float32
	logger     *zap.Logger
}

// NewVectorRetriever creates a VectorRetriever.
func NewVectorRetriever(store vectorstore.Store, embedder embedding.Embedder, maxResults int, minScore float32, logger *zap.Logger) (*VectorRetriever, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidConfig, maxResults)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorRetriever{
		store:      store,
		embedder:   embedder,
		maxResults: maxResults,
		minScore:   minScore,
		logger:     logger,
	}, nil
}

// Retrieve embeds the query and searches the store. An embedding failure
// propagates as-is so callers can classify it.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := r.store.Search(ctx, vec, r.maxResults, r.minScore)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Text:   m.Segment.Text,
			Score:  m.Score,
			Source: SourceEmbeddingStore,
		})
	}

	r.logger.Debug("vector retrieval completed",
		zap.Int("matches", len(results)),
	)
	return results, nil
}

var _ Retriever = (*VectorRetriever)(nil)

// WebRetriever answers queries with live web search hits. Hits carry a
// fixed score of 1 so relevance thresholds never drop live evidence.
type WebRetriever struct {
	engine websearch.Engine
	logger *zap.Logger
}

// NewWebRetriever creates a WebRetriever.
func NewWebRetriever(engine websearch.Engine, logger *zap.Logger) (*WebRetriever, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebRetriever{engine: engine, logger: logger}, nil
}

// Retrieve forwards the query to the search engine. Provider failure
// propagates as-is (websearch.ErrUnavailable).
func (r *WebRetriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	hits, err := r.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Text:   hit.Snippet,
			Score:  1,
			Source: SourceWebSearch,
		})
	}

	r.logger.Debug("web retrieval completed",
		zap.Int("hits", len(results)),
	)
	return results, nil
}

var _ Retriever = (*WebRetriever)(nil)
