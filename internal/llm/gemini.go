package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// GeminiConfig holds settings for the Google Gemini chat API.
type GeminiConfig struct {
	// APIKey authenticates requests. Resolved from the environment by the
	// config layer, never from the config file.
	APIKey string `koanf:"-"`

	// Model is the Gemini model name, e.g. "gemini-2.5-flash".
	Model string `koanf:"model"`

	// Temperature is the sampling temperature, fixed for the session.
	Temperature float64 `koanf:"temperature"`
}

// Validate validates the configuration.
func (c GeminiConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2], got %v", ErrInvalidConfig, c.Temperature)
	}
	return nil
}

// Gemini is a ChatModel backed by Google Gemini.
type Gemini struct {
	client *googleai.GoogleAI
	config GeminiConfig
	logger *zap.Logger
}

// NewGemini creates a Gemini chat model.
func NewGemini(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{client: client, config: config, logger: logger}, nil
}

// Complete produces one completion for the transcript.
func (g *Gemini) Complete(ctx context.Context, messages []Message) (string, error) {
	content, err := toContent(messages)
	if err != nil {
		return "", err
	}

	resp, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(g.config.Temperature),
	)
	if err != nil {
		g.logger.Warn("gemini completion failed",
			zap.String("model", g.config.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	return firstChoice(resp)
}

var _ ChatModel = (*Gemini)(nil)
