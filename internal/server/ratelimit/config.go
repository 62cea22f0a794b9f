package ratelimit

import (
	"time"

	"github.com/jonathan/resume-matcher/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !config.EnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    config.EnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   config.EnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.EnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       config.EnvSet("RATE_LIMIT_WHITELIST"),
		Blacklist:       config.EnvSet("RATE_LIMIT_BLACKLIST"),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Scoring may call the embedding provider
		{Path: "/api/evaluate", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/evaluate/stream", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/evaluate/upload", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/evaluate/async", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/compare", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Extraction is local
		{Path: "/api/skills/extract", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},

		// History writes
		{Path: "/api/history", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/history/", Method: "DELETE", Limit: 20, Window: time.Minute, Burst: 5},

		// Reads fall back to the default limit; /health is unlimited
	}
}
