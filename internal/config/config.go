// Package config loads the engpulse configuration from YAML, with
// sensible defaults for every field so a bare run works against the
// conventional data layout.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// HistoryDir holds the per-dashboard JSON history files
	HistoryDir string `yaml:"history_dir"`

	// DBPath is the SQLite metrics database file
	DBPath string `yaml:"db_path"`

	// Baseline documents seeding the target-progress forecast
	SecurityBaselinePath string `yaml:"security_baseline_path"`
	BugBaselinePath      string `yaml:"bug_baseline_path"`

	// ZScoreThreshold is the minimum |z| flagged as anomalous
	ZScoreThreshold float64 `yaml:"z_score_threshold"`

	// TargetDate is the reduction-target deadline, YYYY-MM-DD
	TargetDate string `yaml:"target_date"`

	API APIConfig `yaml:"api"`
}

// APIConfig configures the read-only query API server.
type APIConfig struct {
	Addr              string   `yaml:"addr"`
	CORSAllowOrigins  []string `yaml:"cors_allow_origins"`
	RateLimitEnabled  bool     `yaml:"rate_limit_enabled"`
	RateLimitRequests int      `yaml:"rate_limit_requests"`
	RateLimitWindow   string   `yaml:"rate_limit_window"` // e.g. "1m"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HistoryDir:           "data/history",
		DBPath:               "data/metrics.db",
		SecurityBaselinePath: "data/security_baseline.json",
		BugBaselinePath:      "data/bug_baseline.json",
		ZScoreThreshold:      2.0,
		TargetDate:           "2026-12-31",
		API: APIConfig{
			Addr:              ":8080",
			CORSAllowOrigins:  []string{"*"},
			RateLimitEnabled:  true,
			RateLimitRequests: 120,
			RateLimitWindow:   "1m",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if _, err := cfg.ParseTargetDate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseTargetDate parses the configured deadline.
func (c *Config) ParseTargetDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", c.TargetDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target_date %q: %w", c.TargetDate, err)
	}
	return d, nil
}

// RateLimitWindowDuration parses the rate-limit window, defaulting to
// one minute on a missing or malformed value.
func (c *APIConfig) RateLimitWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
