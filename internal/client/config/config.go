package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds runtime settings for the GophChat terminal client.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - Token: bearer token; when empty the token stored by "login" is used.
//   - GeminiAPIKey / GeminiModel: credentials and model for generation.
//   - RevealInterval: pause between revealed characters.
//   - DatabasePath: sqlite file for local metadata.
//   - ListRetryDelay: fixed delay between conversation list retries.
//   - LogLevel: level for diagnostics written to stderr.
type Config struct {
	ServerURL      string
	Token          string
	GeminiAPIKey   string
	GeminiModel    string
	RevealInterval time.Duration
	DatabasePath   string
	ListRetryDelay time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.GeminiModel = "gemini-2.5-flash"
	c.RevealInterval = 14 * time.Millisecond
	c.DatabasePath = "chat.db"
	c.ListRetryDelay = time.Second
	c.LogLevel = "warn"
}

// Validate reports settings the client cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return errors.New("server URL is required")
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("missing Gemini API key (GEMINI_API_KEY or -k)")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
