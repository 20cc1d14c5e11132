package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// ErrInvalidConfig indicates invalid embedding provider configuration.
var ErrInvalidConfig = errors.New("invalid embedding configuration")

// Config holds settings for an OpenAI-compatible embedding endpoint.
// Works against OpenAI itself as well as self-hosted servers (TEI, Ollama)
// that speak the same API.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests. Resolved from the environment by the
	// config layer, never from the config file.
	APIKey string `koanf:"-"`

	// Model is the embedding model name.
	Model string `koanf:"model"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	return nil
}

// OpenAIEmbedder embeds text through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	impl   *embeddings.EmbedderImpl
	model  string
	logger *zap.Logger
}

// NewOpenAI creates an OpenAIEmbedder from the given configuration.
func NewOpenAI(config Config, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// langchaingo requires a token; self-hosted OpenAI-compatible servers
	// (TEI etc.) ignore it.
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithEmbeddingModel(config.Model),
		openai.WithToken(apiKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}
	impl, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &OpenAIEmbedder{impl: impl, model: config.Model, logger: logger}, nil
}

// EmbedQuery embeds a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Warn("query embedding failed", zap.String("model", e.model), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

// EmbedDocuments embeds a batch of document texts, preserving order.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	vecs, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Warn("document embedding failed",
			zap.String("model", e.model),
			zap.Int("texts", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrUnavailable, len(vecs), len(texts))
	}
	return vecs, nil
}

var _ Embedder = (*OpenAIEmbedder)(nil)
