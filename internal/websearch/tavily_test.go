package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamoughit/Tp4testMoughit/internal/websearch"
)

func newTavily(t *testing.T, endpoint string) *websearch.Tavily {
	t.Helper()
	client, err := websearch.NewTavily(websearch.TavilyConfig{
		Endpoint:          endpoint,
		APIKey:            "test-key",
		MaxResults:        3,
		RequestsPerSecond: 1000,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestTavilyConfigValidate(t *testing.T) {
	_, err := websearch.NewTavily(websearch.TavilyConfig{}, nil)
	assert.ErrorIs(t, err, websearch.ErrInvalidConfig)
}

func TestTavilySearch(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Morocco", "url": "https://example.org/ma", "content": "Rabat is the capital."},
				{"title": "Geography", "url": "https://example.org/geo", "content": "North Africa."},
			},
		})
	}))
	defer server.Close()

	client := newTavily(t, server.URL)
	hits, err := client.Search(context.Background(), "capital of Morocco")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "capital of Morocco", gotBody["query"])
	assert.Equal(t, float64(3), gotBody["max_results"])

	require.Len(t, hits, 2)
	assert.Equal(t, "Morocco", hits[0].Title)
	assert.Equal(t, "Rabat is the capital.", hits[0].Snippet)
	assert.Equal(t, "https://example.org/ma", hits[0].URL)
}

func TestTavilySearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	hits, err := newTavily(t, server.URL).Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTavilySearchQuotaExhausted(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			_, err := newTavily(t, server.URL).Search(context.Background(), "anything")
			assert.ErrorIs(t, err, websearch.ErrUnavailable)
		})
	}
}

func TestTavilySearchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTavily(t, server.URL).Search(context.Background(), "anything")
	assert.ErrorIs(t, err, websearch.ErrUnavailable)
}

func TestTavilySearchContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTavily(t, "http://127.0.0.1:0").Search(ctx, "anything")
	assert.Error(t, err)
}
