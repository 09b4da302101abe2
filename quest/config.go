package quest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fieldops/handler/quest/internal/fetch"
)

// Config holds the full quest handler configuration.
type Config struct {
	Listen   string       `yaml:"listen"`
	DBPath   string       `yaml:"db_path"`
	LogLevel string       `yaml:"log_level"` // debug | info | warn | error
	Oracle   OracleConfig `yaml:"oracle"`
	Fetch    FetchConfig  `yaml:"fetch"`
}

// OracleConfig configures the extraction oracle endpoint. The API key
// falls back to the ORACLE_API_KEY environment variable so it can stay
// out of config files.
type OracleConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// FetchConfig configures recon URL fetching.
type FetchConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxBytes   int64  `yaml:"max_bytes"`
	UserAgent  string `yaml:"user_agent"`
}

// FetcherConfig converts to the fetch package's config type.
func (f FetchConfig) FetcherConfig() fetch.Config {
	return fetch.Config{
		Timeout:   time.Duration(f.TimeoutSec) * time.Second,
		MaxBytes:  f.MaxBytes,
		UserAgent: f.UserAgent,
	}
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8080",
		DBPath:   "quest.db",
		LogLevel: "info",
		Oracle: OracleConfig{
			BaseURL:    "https://openrouter.ai/api/v1",
			Model:      "anthropic/claude-3.5-sonnet",
			TimeoutSec: 120,
		},
		Fetch: FetchConfig{
			TimeoutSec: 30,
			MaxBytes:   4 * 1024 * 1024,
			UserAgent:  "QuestHandler/1.0",
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("ORACLE_API_KEY")
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle.base_url is required")
	}
	return nil
}
