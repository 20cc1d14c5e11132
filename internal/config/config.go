// Package config provides configuration loading for ragchat.
//
// Precedence, highest first: environment variables (RAGCHAT_ prefix), the
// YAML config file, hardcoded defaults. API keys are never read from the
// file; they come from the conventional environment variables
// (GEMINI_API_KEY, OPENAI_API_KEY, TAVILY_API_KEY) and are handed to
// constructors explicitly.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/ayamoughit/Tp4testMoughit/internal/ingest"
	"github.com/ayamoughit/Tp4testMoughit/internal/logging"
	"github.com/ayamoughit/Tp4testMoughit/internal/splitter"
	"github.com/ayamoughit/Tp4testMoughit/internal/telemetry"
)

const envPrefix = "RAGCHAT_"

// ErrInvalidConfig indicates the loaded configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ChatConfig selects and tunes the chat model.
type ChatConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `koanf:"provider"`

	// Model is the chat model name.
	Model string `koanf:"model"`

	// BaseURL overrides the API root for OpenAI-compatible endpoints.
	BaseURL string `koanf:"base_url"`

	// Temperature is the sampling temperature, fixed for the session.
	Temperature float64 `koanf:"temperature"`
}

// EmbeddingConfig tunes the embedding endpoint.
type EmbeddingConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// WebsearchConfig tunes the web search provider.
type WebsearchConfig struct {
	// Enabled wires the web route into the routing table.
	Enabled bool `koanf:"enabled"`

	Endpoint          string  `koanf:"endpoint"`
	MaxResults        int     `koanf:"max_results"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// RetrievalConfig tunes vector retrieval.
type RetrievalConfig struct {
	// MaxResults is the top-k cap per query.
	MaxResults int `koanf:"max_results"`

	// MinScore is the cosine similarity floor.
	MinScore float64 `koanf:"min_score"`
}

// MemoryConfig tunes conversation memory.
type MemoryConfig struct {
	// Window is the maximum number of retained turns.
	Window int `koanf:"window"`
}

// StoreConfig selects the vector store backend.
type StoreConfig struct {
	// Backend is "memory" or "chromem".
	Backend string `koanf:"backend"`

	// Collection names the chromem collection.
	Collection string `koanf:"collection"`
}

// DocumentsConfig locates the documents to ingest.
type DocumentsConfig struct {
	// Dir is the directory of .txt/.md files indexed at startup.
	Dir string `koanf:"dir"`
}

// Keys carries the API keys resolved from the environment. Never loaded
// from the config file.
type Keys struct {
	Gemini string
	OpenAI string
	Tavily string
}

// Config is the full ragchat configuration.
type Config struct {
	Logging   logging.Config   `koanf:"logging"`
	Telemetry telemetry.Config `koanf:"telemetry"`
	Splitter  splitter.Config  `koanf:"splitter"`
	Ingest    ingest.Config    `koanf:"ingest"`
	Documents DocumentsConfig  `koanf:"documents"`
	Embedding EmbeddingConfig  `koanf:"embedding"`
	Chat      ChatConfig       `koanf:"chat"`
	Websearch WebsearchConfig  `koanf:"websearch"`
	Retrieval RetrievalConfig  `koanf:"retrieval"`
	Memory    MemoryConfig     `koanf:"memory"`
	Store     StoreConfig      `koanf:"store"`

	Keys Keys `koanf:"-"`
}

// applyDefaults fills unset fields with the session defaults. Zero is a
// legal value for the temperature and score floor, so those two consult the
// loaded keys instead of the zero value.
func applyDefaults(c *Config, k *koanf.Koanf) {
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	c.Ingest.ApplyDefaults()

	if c.Splitter.ChunkSize == 0 {
		c.Splitter.ChunkSize = 300
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Chat.Provider == "" {
		c.Chat.Provider = "gemini"
	}
	if c.Chat.Model == "" {
		switch c.Chat.Provider {
		case "openai":
			c.Chat.Model = "gpt-4o-mini"
		default:
			c.Chat.Model = "gemini-2.5-flash"
		}
	}
	if !k.Exists("chat.temperature") {
		c.Chat.Temperature = 0.3
	}
	if c.Websearch.MaxResults == 0 {
		c.Websearch.MaxResults = 5
	}
	if c.Websearch.RequestsPerSecond == 0 {
		c.Websearch.RequestsPerSecond = 1
	}
	if c.Retrieval.MaxResults == 0 {
		c.Retrieval.MaxResults = 2
	}
	if !k.Exists("retrieval.min_score") {
		c.Retrieval.MinScore = 0.5
	}
	if c.Memory.Window == 0 {
		c.Memory.Window = 10
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "segments"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %v", ErrInvalidConfig, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %v", ErrInvalidConfig, err)
	}
	if err := c.Splitter.Validate(); err != nil {
		return fmt.Errorf("%w: splitter: %v", ErrInvalidConfig, err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("%w: ingest: %v", ErrInvalidConfig, err)
	}
	if c.Chat.Provider != "gemini" && c.Chat.Provider != "openai" {
		return fmt.Errorf("%w: chat provider must be 'gemini' or 'openai', got %q", ErrInvalidConfig, c.Chat.Provider)
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("%w: chat temperature must be in [0, 2], got %v", ErrInvalidConfig, c.Chat.Temperature)
	}
	if c.Retrieval.MaxResults <= 0 {
		return fmt.Errorf("%w: retrieval max results must be positive, got %d", ErrInvalidConfig, c.Retrieval.MaxResults)
	}
	if c.Retrieval.MinScore < -1 || c.Retrieval.MinScore > 1 {
		return fmt.Errorf("%w: retrieval min score must be in [-1, 1], got %v", ErrInvalidConfig, c.Retrieval.MinScore)
	}
	if c.Memory.Window <= 0 {
		return fmt.Errorf("%w: memory window must be positive, got %d", ErrInvalidConfig, c.Memory.Window)
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "chromem" {
		return fmt.Errorf("%w: store backend must be 'memory' or 'chromem', got %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// Load builds the configuration from an optional YAML file, environment
// overrides, and defaults.
func Load(configPath string) (*Config, error) {
	var content []byte
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
		content = data
	}
	return Parse(content)
}

// Parse builds the configuration from raw YAML plus environment overrides.
// A nil or empty document yields the defaults.
func Parse(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	// RAGCHAT_CHAT_TEMPERATURE -> chat.temperature; the first underscore
	// after the prefix separates section from field, later underscores
	// belong to the field name.
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg, k)

	cfg.Keys = Keys{
		Gemini: os.Getenv("GEMINI_API_KEY"),
		OpenAI: os.Getenv("OPENAI_API_KEY"),
		Tavily: os.Getenv("TAVILY_API_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
