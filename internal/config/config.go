// Package config loads the coach configuration from YAML with environment
// variable expansion and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Gemini GeminiConfig `yaml:"gemini"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// GeminiConfig configures the streaming model client.
type GeminiConfig struct {
	// APIKey authenticates model calls. The GEMINI_API_KEY environment
	// variable overrides the file value.
	APIKey string `yaml:"api_key"`

	// Model is the model ID. Default: gemini-2.0-flash.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint.
	BaseURL string `yaml:"base_url"`

	// MaxRetries bounds pre-stream retry attempts. Default: 3.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base backoff delay. Default: 1s.
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// StoreConfig configures the SQLite store behind the reference tools.
type StoreConfig struct {
	// Path is the database file. Default: coach.db. Use ":memory:" for an
	// ephemeral store.
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:      "gemini-2.0-flash",
			MaxRetries: 3,
			RetryDelay: time.Second,
		},
		Store: StoreConfig{Path: "coach.db"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads the file at path, expands $VAR references, applies defaults,
// and validates. A missing path returns defaults plus environment values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.MaxRetries <= 0 {
		c.Gemini.MaxRetries = d.Gemini.MaxRetries
	}
	if c.Gemini.RetryDelay <= 0 {
		c.Gemini.RetryDelay = d.Gemini.RetryDelay
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("gemini.api_key is required (or set GEMINI_API_KEY)")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}
