package observability

import (
	"testing"

	"github.com/smallbiznis/hushbox/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment:       "production",
		AppVersion:        "1.2.3",
		OTelEnabled:       true,
		OTLPEndpoint:      "collector:4317",
		OTelSamplingRatio: 0.25,
	})

	require.Equal(t, "hushbox", cfg.ServiceName)
	require.Equal(t, "1.2.3", cfg.Version)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, OtelConfig{Enabled: true, Endpoint: "collector:4317", Protocol: "grpc", SamplingRatio: 0.25}, cfg.Otel)
	require.False(t, cfg.Debug())
}

func TestExportNeedsEndpoint(t *testing.T) {
	cfg := LoadConfig(config.Config{OTelEnabled: true, OTLPEndpoint: " "})
	require.False(t, cfg.Otel.Enabled)
}

func TestDebug(t *testing.T) {
	require.True(t, LoadConfig(config.Config{Environment: "development"}).Debug())
	require.True(t, LoadConfig(config.Config{Environment: "production", LogLevel: "DEBUG"}).Debug())
	require.False(t, LoadConfig(config.Config{Environment: "staging"}).Debug())
}

func TestOtelNormalization(t *testing.T) {
	cfg := LoadConfig(config.Config{OTLPProtocol: "HTTP/protobuf", OTelSamplingRatio: 4})
	require.Equal(t, "http", cfg.Otel.Protocol)
	require.Equal(t, 1.0, cfg.Otel.SamplingRatio)

	cfg = LoadConfig(config.Config{OTLPProtocol: "carrier-pigeon", OTelSamplingRatio: -1})
	require.Equal(t, "grpc", cfg.Otel.Protocol)
	require.Zero(t, cfg.Otel.SamplingRatio)
}
