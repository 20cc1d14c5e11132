package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// OpenAIConfig holds settings for an OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	// BaseURL is the API root; empty means the public OpenAI endpoint.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests. Resolved from the environment by the
	// config layer, never from the config file.
	APIKey string `koanf:"-"`

	// Model is the chat model name.
	Model string `koanf:"model"`

	// Temperature is the sampling temperature, fixed for the session.
	Temperature float64 `koanf:"temperature"`
}

// Validate validates the configuration.
func (c OpenAIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2], got %v", ErrInvalidConfig, c.Temperature)
	}
	return nil
}

// OpenAI is a ChatModel backed by an OpenAI-compatible API.
type OpenAI struct {
	client *openai.LLM
	config OpenAIConfig
	logger *zap.Logger
}

// NewOpenAI creates an OpenAI-compatible chat model.
func NewOpenAI(config OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// langchaingo requires a token; self-hosted OpenAI-compatible servers
	// ignore it.
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &OpenAI{client: client, config: config, logger: logger}, nil
}

// Complete produces one completion for the transcript.
func (o *OpenAI) Complete(ctx context.Context, messages []Message) (string, error) {
	content, err := toContent(messages)
	if err != nil {
		return "", err
	}

	resp, err := o.client.GenerateContent(ctx, content,
		llms.WithTemperature(o.config.Temperature),
	)
	if err != nil {
		o.logger.Warn("openai completion failed",
			zap.String("model", o.config.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return firstChoice(resp)
}

var _ ChatModel = (*OpenAI)(nil)
