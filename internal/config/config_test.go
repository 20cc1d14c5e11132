package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamoughit/Tp4testMoughit/internal/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Splitter.ChunkSize)
	assert.Equal(t, 0, cfg.Splitter.Overlap)
	assert.Equal(t, 2, cfg.Retrieval.MaxResults)
	assert.InDelta(t, 0.5, cfg.Retrieval.MinScore, 1e-9)
	assert.Equal(t, 10, cfg.Memory.Window)
	assert.Equal(t, "gemini", cfg.Chat.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Chat.Model)
	assert.InDelta(t, 0.3, cfg.Chat.Temperature, 1e-9)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.False(t, cfg.Websearch.Enabled)
}

func TestParseYAMLOverridesDefaults(t *testing.T) {
	yaml := []byte(`
splitter:
  chunk_size: 120
  overlap: 20
retrieval:
  max_results: 3
  min_score: 0.6
chat:
  provider: openai
  model: gpt-4o
memory:
  window: 4
store:
  backend: chromem
websearch:
  enabled: true
`)
	cfg, err := config.Parse(yaml)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Splitter.ChunkSize)
	assert.Equal(t, 20, cfg.Splitter.Overlap)
	assert.Equal(t, 3, cfg.Retrieval.MaxResults)
	assert.InDelta(t, 0.6, cfg.Retrieval.MinScore, 1e-9)
	assert.Equal(t, "openai", cfg.Chat.Provider)
	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
	assert.Equal(t, 4, cfg.Memory.Window)
	assert.Equal(t, "chromem", cfg.Store.Backend)
	assert.True(t, cfg.Websearch.Enabled)
}

func TestParseEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("RAGCHAT_RETRIEVAL_MAX_RESULTS", "7")
	t.Setenv("RAGCHAT_CHAT_TEMPERATURE", "0.9")
	t.Setenv("RAGCHAT_LOGGING_LEVEL", "debug")

	cfg, err := config.Parse([]byte("retrieval:\n  max_results: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Retrieval.MaxResults)
	assert.InDelta(t, 0.9, cfg.Chat.Temperature, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// Zero is a legal value for these knobs; configuring it must not be
// mistaken for "unset" and replaced by the default.
func TestParseExplicitZeroIsKept(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		cfg, err := config.Parse([]byte("chat:\n  temperature: 0\nretrieval:\n  min_score: 0\n"))
		require.NoError(t, err)
		assert.Zero(t, cfg.Chat.Temperature)
		assert.Zero(t, cfg.Retrieval.MinScore)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("RAGCHAT_CHAT_TEMPERATURE", "0")
		t.Setenv("RAGCHAT_RETRIEVAL_MIN_SCORE", "0")

		cfg, err := config.Parse(nil)
		require.NoError(t, err)
		assert.Zero(t, cfg.Chat.Temperature)
		assert.Zero(t, cfg.Retrieval.MinScore)
	})
}

func TestParseAPIKeysFromEnvironmentOnly(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("TAVILY_API_KEY", "tk")

	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "gk", cfg.Keys.Gemini)
	assert.Equal(t, "tk", cfg.Keys.Tavily)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "overlap not below chunk size", yaml: "splitter:\n  chunk_size: 10\n  overlap: 10\n"},
		{name: "bad provider", yaml: "chat:\n  provider: claude\n"},
		{name: "negative window", yaml: "memory:\n  window: -1\n"},
		{name: "bad backend", yaml: "store:\n  backend: qdrant\n"},
		{name: "min score out of range", yaml: "retrieval:\n  min_score: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
