/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config covers process level configuration read from environment variables.
// The schedules themselves are fixed and not configurable.
type Config struct {
	Environment string
	NoColor     bool

	// Preview server
	PreviewBind     string
	PreviewPort     int
	RateLimitPerSec int
	CORSOrigins     []string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads an optional .env file and the environment, applies defaults,
// and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{
		Environment:     getEnvAny([]string{"D4EVENTS_ENV", "D4_ENV"}, "production"),
		NoColor:         getEnvBoolAny([]string{"D4EVENTS_NO_COLOR"}, os.Getenv("NO_COLOR") != ""),
		PreviewBind:     getEnvAny([]string{"D4EVENTS_PREVIEW_BIND"}, "127.0.0.1"),
		PreviewPort:     getEnvIntAny([]string{"D4EVENTS_PREVIEW_PORT"}, 8787),
		RateLimitPerSec: getEnvIntAny([]string{"D4EVENTS_RATE_LIMIT_RPS"}, 50),
		CORSOrigins:     splitList(getEnvAny([]string{"D4EVENTS_CORS_ORIGINS"}, "*")),

		TracingEnabled:    getEnvBoolAny([]string{"D4EVENTS_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"D4EVENTS_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"D4EVENTS_TRACING_SAMPLE_RATE"}, 1.0),
	}

	if cfg.PreviewPort < 0 || cfg.PreviewPort > 65535 {
		return nil, fmt.Errorf("D4EVENTS_PREVIEW_PORT must be between 0 and 65535, got %d", cfg.PreviewPort)
	}
	if cfg.RateLimitPerSec <= 0 {
		return nil, fmt.Errorf("D4EVENTS_RATE_LIMIT_RPS must be positive, got %d", cfg.RateLimitPerSec)
	}
	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return nil, fmt.Errorf("D4EVENTS_TRACING_SAMPLE_RATE must be within [0,1], got %v", cfg.TracingSampleRate)
	}
	if cfg.TracingEnabled && cfg.OTLPEndpoint == "" {
		return nil, fmt.Errorf("D4EVENTS_OTLP_ENDPOINT must be provided when tracing is enabled")
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// PreviewAddr is the listen address of the preview server.
func (c *Config) PreviewAddr() string {
	return fmt.Sprintf("%s:%d", c.PreviewBind, c.PreviewPort)
}

// Development reports whether verbose logging should be on.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"TRACING_ENABLED":     "use D4EVENTS_TRACING_ENABLED",
		"TRACING_SAMPLE_RATE": "use D4EVENTS_TRACING_SAMPLE_RATE",
		"PREVIEW_PORT":        "use D4EVENTS_PREVIEW_PORT",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
