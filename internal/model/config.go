package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration. It is constructed once
// (defaults, then config file, env, flags) and passed into the runner.
type Config struct {
	Brave BraveConfig `yaml:"brave" mapstructure:"brave"`
	XAI   XAIConfig   `yaml:"xai" mapstructure:"xai"`

	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Enrich      EnrichConfig      `yaml:"enrich" mapstructure:"enrich"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// BraveConfig configures the Brave Search API client.
type BraveConfig struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	SearchLang string `yaml:"search_lang" mapstructure:"search_lang"`
	Country    string `yaml:"country" mapstructure:"country"`
}

// XAIConfig configures the xAI client used for X search.
type XAIConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// HTTPConfig holds shared HTTP client settings.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig sizes the worker pools.
type ConcurrencyConfig struct {
	FetchWorkers  int `yaml:"fetch_workers" mapstructure:"fetch_workers"`
	EnrichWorkers int `yaml:"enrich_workers" mapstructure:"enrich_workers"`
}

// EnrichConfig controls the reddit engagement enrichment.
type EnrichConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxTopComments    int     `yaml:"max_top_comments" mapstructure:"max_top_comments"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RespectRobots     bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cacheDir := ".lookback/cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".lookback", "cache")
	}

	return &Config{
		XAI: XAIConfig{
			BaseURL: "https://api.x.ai/v1",
			Model:   "grok-4-1-fast",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "lookback/0.2 (+https://github.com/avelichko/lookback)",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     cacheDir,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			FetchWorkers:  6,
			EnrichWorkers: 5,
		},
		Enrich: EnrichConfig{
			Enabled:           true,
			MaxTopComments:    3,
			RequestsPerSecond: 1,
			RespectRobots:     true,
		},
	}
}

// HasBrave reports whether the Brave-backed sources can run.
func (c *Config) HasBrave() bool { return c.Brave.APIKey != "" }

// HasXAI reports whether the X source can run.
func (c *Config) HasXAI() bool { return c.XAI.APIKey != "" }
