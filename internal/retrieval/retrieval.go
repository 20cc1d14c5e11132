// Package retrieval assembles evidence for a query: retrievers pull scored
// snippets from knowledge sources, a router picks which sources apply, and
// the augmentor fans out, merges, and deduplicates into one evidence list.
package retrieval

import (
	"context"
	"errors"
	"fmt"
)

const (
	// SourceEmbeddingStore labels results from a vector store retriever.
	SourceEmbeddingStore = "embedding-store"

	// SourceWebSearch labels results from a live web search retriever.
	SourceWebSearch = "web-search"
)

var (
	// ErrInvalidConfig indicates invalid retrieval configuration.
	ErrInvalidConfig = errors.New("invalid retrieval configuration")

	// ErrAugmentationFailed indicates every routed retriever failed, so no
	// evidence could be assembled at all.
	ErrAugmentationFailed = errors.New("augmentation failed")
)

// Result is one scored snippet of evidence. Results are ephemeral: built
// per query, merged, and discarded after the turn.
type Result struct {
	// Text is the snippet content.
	Text string

	// Score is the retriever-specific relevance, higher is better.
	Score float32

	// Source labels the producing retriever kind.
	Source string
}

// Retriever pulls relevant snippets for a query from one knowledge source.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Result, error)
}

// Route binds a retriever to a stable identifier and a human-readable
// description of what its source knows. The description is what a
// classifying router shows the model.
type Route struct {
	ID          string
	Description string
	Retriever   Retriever
}

// Table is the ordered routing table. Declaration order is load-bearing:
// the augmentor merges results in table order regardless of which
// retriever answers first.
type Table []Route

// Validate checks ids are unique and non-empty and retrievers are set.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: routing table is empty", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(t))
	for i, route := range t {
		if route.ID == "" {
			return fmt.Errorf("%w: route %d has empty id", ErrInvalidConfig, i)
		}
		if _, dup := seen[route.ID]; dup {
			return fmt.Errorf("%w: duplicate route id %q", ErrInvalidConfig, route.ID)
		}
		if route.Retriever == nil {
			return fmt.Errorf("%w: route %q has nil retriever", ErrInvalidConfig, route.ID)
		}
		seen[route.ID] = struct{}{}
	}
	return nil
}

// IDs returns the route ids in declaration order.
func (t Table) IDs() []string {
	ids := make([]string, len(t))
	for i, route := range t {
		ids[i] = route.ID
	}
	return ids
}

// Decision is a router's selection for one query. Ephemeral, like Result.
type Decision struct {
	// IDs are the selected route ids, in table declaration order.
	IDs []string

	// Rationale records how the selection was made, for logging.
	Rationale string
}
