package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamoughit/Tp4testMoughit/internal/telemetry"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  telemetry.Config
		wantErr bool
	}{
		{name: "disabled skips validation", config: telemetry.Config{Enabled: false, SampleRate: 9}},
		{name: "enabled valid", config: telemetry.Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: 0.5}},
		{name: "rate too high", config: telemetry.Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: 2}, wantErr: true},
		{name: "rate negative", config: telemetry.Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: -1}, wantErr: true},
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

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{Enabled: false}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
