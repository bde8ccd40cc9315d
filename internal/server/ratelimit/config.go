package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// EndpointConfig is the rate limit for one endpoint pattern. Paths ending
// in "/" match by prefix, so "/jobs/" covers every per-job route.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per window
	Window time.Duration
	Burst  int           // burst capacity; defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Endpoints       []EndpointConfig
}

// DefaultConfig is the built-in policy.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Endpoints:       DefaultEndpointConfigs(),
	}
}

// LoadConfig reads the rate limit policy from the environment.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.DefaultLimit = limit
		}
	}
	if v := os.Getenv("RATE_LIMIT_DEFAULT_WINDOW"); v != "" {
		if window, err := time.ParseDuration(v); err == nil {
			cfg.DefaultWindow = window
		}
	}
	return cfg
}

// DefaultEndpointConfigs tiers the endpoints by cost: generation-triggering
// operations get strict hourly budgets, other writes a moderate per-minute
// one. Reads fall through to the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Each of these fans out to external model calls.
		{Path: "/jobs/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/jobs", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Cheap writes.
		{Path: "/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/auth/token", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
	}
}
