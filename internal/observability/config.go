package observability

import (
	"strings"

	"github.com/smallbiznis/hushbox/internal/config"
)

const defaultServiceName = "hushbox"

// Config is the observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	Otel OtelConfig
}

// OtelConfig selects the OTLP exporter shared by traces and metrics.
type OtelConfig struct {
	Enabled       bool
	Endpoint      string
	Protocol      string
	SamplingRatio float64
}

// LoadConfig normalizes the values read by config.Load. Export is switched off
// when no collector endpoint is configured.
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if level == "" {
		level = "info"
	}

	endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
	return Config{
		ServiceName: serviceName,
		Environment: strings.TrimSpace(cfg.Environment),
		Version:     strings.TrimSpace(cfg.AppVersion),
		LogLevel:    level,
		LogFormat:   cfg.LogFormat,
		Otel: OtelConfig{
			Enabled:       cfg.OTelEnabled && endpoint != "",
			Endpoint:      endpoint,
			Protocol:      normalizeProtocol(cfg.OTLPProtocol),
			SamplingRatio: clampRatio(cfg.OTelSamplingRatio),
		},
	}
}

// Debug reports whether verbose request and query logging is on.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "development", "local", "test":
		return true
	}
	return false
}

func normalizeProtocol(protocol string) string {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return "http"
	default:
		return "grpc"
	}
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}
