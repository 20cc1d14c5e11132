package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultTavilyEndpoint = "https://api.tavily.com/search"

// ErrInvalidConfig indicates invalid web search configuration.
var ErrInvalidConfig = fmt.Errorf("invalid websearch configuration")

// TavilyConfig holds settings for the Tavily search API.
type TavilyConfig struct {
	// Endpoint is the search API URL. Default: the public Tavily endpoint.
	Endpoint string `koanf:"endpoint"`

	// APIKey authenticates requests. Resolved from the environment by the
	// config layer, never from the config file.
	APIKey string `koanf:"-"`

	// MaxResults caps hits per query. Default: 5.
	MaxResults int `koanf:"max_results"`

	// RequestsPerSecond is the client-side rate limit. Default: 1.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Timeout bounds a single search request. Default: 15s.
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *TavilyConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultTavilyEndpoint
	}
	if c.MaxResults == 0 {
		c.MaxResults = 5
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
}

// Validate validates the configuration.
func (c *TavilyConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("%w: max results must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Tavily is a rate-limited client for the Tavily search API.
type Tavily struct {
	config  TavilyConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTavily creates a Tavily client.
func NewTavily(config TavilyConfig, logger *zap.Logger) (*Tavily, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tavily{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		logger:  logger,
	}, nil
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs one query against Tavily. Rate limiting happens client-side
// before the request leaves.
func (t *Tavily) Search(ctx context.Context, query string) ([]Hit, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(tavilyRequest{
		Query:       query,
		MaxResults:  t.config.MaxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.config.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("web search request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Warn("web search returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	hits := make([]Hit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}

	t.logger.Debug("web search completed",
		zap.String("query", query),
		zap.Int("hits", len(hits)),
	)
	return hits, nil
}

var _ Engine = (*Tavily)(nil)
