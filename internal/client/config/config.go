package config

import "time"

// Config holds runtime settings for the mood journal CLI.
//
// Fields:
//   - ServerBaseURL: scheme://host[:port] of the REST backend.
//   - RequestTimeout: per-request timeout of the API client.
//   - DatabasePath: SQLite file holding the persisted session.
//   - RequestsPerSecond: optional client-side rate limit; 0 disables it.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerBaseURL     string
	RequestTimeout    time.Duration
	DatabasePath      string
	RequestsPerSecond float64
	LogLevel          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "moodjournal.db"
	c.RequestsPerSecond = 0
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
