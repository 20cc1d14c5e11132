// Package websearch defines the live web search boundary and a Tavily
// client. Search is an external collaborator: callers treat every failure,
// quota exhaustion included, as the provider being unavailable.
package websearch

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the search provider could not serve the query
// (transport failure, auth, rate limit, quota).
var ErrUnavailable = errors.New("web search unavailable")

// Hit is a single search result.
type Hit struct {
	Title string
	URL   string
	// Snippet is the provider-extracted text for the hit.
	Snippet string
}

// Engine answers live web queries.
type Engine interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}
