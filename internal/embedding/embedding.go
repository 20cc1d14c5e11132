// Package embedding defines the embedding boundary used by ingestion and
// retrieval. The embedding model is an external collaborator reached over
// HTTP; callers only see the Embedder interface and a small error surface.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the embedding provider could not produce
	// vectors (transport failure, auth, quota).
	ErrUnavailable = errors.New("embedding provider unavailable")

	// ErrEmptyInput indicates an embedding request with no text.
	ErrEmptyInput = errors.New("no text to embed")
)

// Embedder produces vector representations of text. Implementations must
// return one vector per input, all with the same dimension.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of document texts, preserving order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
