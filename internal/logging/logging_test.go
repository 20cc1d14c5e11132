package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ayamoughit/Tp4testMoughit/internal/logging"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  logging.Config
		wantErr bool
	}{
		{name: "json info", config: logging.Config{Level: "info", Format: "json"}},
		{name: "console debug", config: logging.Config{Level: "debug", Format: "console"}},
		{name: "bad level", config: logging.Config{Level: "loud", Format: "json"}, wantErr: true},
		{name: "bad format", config: logging.Config{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	logger, err := logging.New(logging.Config{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer func() { _ = logger.Sync() }()

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "shout"})
	assert.Error(t, err)
}
