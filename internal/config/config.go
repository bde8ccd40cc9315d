// Package config provides environment configuration for the blog pipeline
// service: server settings, collaborator credentials, pipeline tuning, and
// admin auth.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the process configuration, read from environment variables.
// A .env file, when present, is loaded by the CLI before Load runs.
type Config struct {
	// Server
	Port           int      `validate:"min=1,max=65535"`
	AllowedOrigins []string `validate:"min=1"`

	// Persistence. postgres:// and postgresql:// URLs select the Postgres
	// store, memory:// the in-memory store, anything else a SQLite file.
	DatabaseURL string `validate:"required"`

	// Collaborators
	GeminiAPIKey   string
	SearchAPIKey   string
	SearchEngineID string

	// Pipeline tuning
	StatusDelay    time.Duration `validate:"min=0"`
	EnrichSnippets bool
	UseBrowser     bool

	// Janitor
	JanitorSchedule string        `validate:"required"`
	StaleAfter      time.Duration `validate:"min=1m"`
	SweepOnJanitor  bool

	Verbose bool
}

// Defaults mirrors the zero-configuration development setup: a local SQLite
// file and a permissive CORS policy.
func Defaults() *Config {
	return &Config{
		Port:            8000,
		AllowedOrigins:  []string{"*"},
		DatabaseURL:     "blog_pipeline.db",
		StatusDelay:     500 * time.Millisecond,
		JanitorSchedule: "0 */10 * * * *",
		StaleAfter:      30 * time.Minute,
	}
}

// Load builds the configuration from the environment on top of Defaults
// and validates it.
func Load() (*Config, error) {
	cfg := Defaults()

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.SearchAPIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	cfg.SearchEngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")

	if v := os.Getenv("STATUS_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid STATUS_DELAY_MS: %q", v)
		}
		cfg.StatusDelay = time.Duration(ms) * time.Millisecond
	}

	cfg.EnrichSnippets = envBool("ENRICH_SNIPPETS", false)
	cfg.UseBrowser = envBool("FETCH_USE_BROWSER", false)
	cfg.Verbose = envBool("VERBOSE", false)

	if v := os.Getenv("JANITOR_SCHEDULE"); v != "" {
		cfg.JanitorSchedule = v
	}

	if v := os.Getenv("STALE_AFTER_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 1 {
			return nil, fmt.Errorf("invalid STALE_AFTER_MINUTES: %q", v)
		}
		cfg.StaleAfter = time.Duration(minutes) * time.Minute
	}

	cfg.SweepOnJanitor = envBool("JANITOR_SWEEP_ABANDONED", false)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges via struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func envBool(name string, fallback bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
