// Package config loads and validates client config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration loaded from the environment.
type Config struct {
	// APIBaseURL is the backend base URL (e.g. http://localhost:5000). All API paths are relative to it.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	// HTTPConnectTimeout is the TCP connect timeout for API calls (e.g. "10s").
	HTTPConnectTimeout string `mapstructure:"HTTP_CONNECT_TIMEOUT"`
	// HTTPTimeout is the end-to-end request timeout for API calls (e.g. "30s").
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`
	// StoragePath is the on-device SQLite file holding session state (default kotekapu.db).
	StoragePath string `mapstructure:"STORAGE_PATH"`
	// FeedPageSize is the page size for a feed refresh (default 10).
	FeedPageSize int `mapstructure:"FEED_PAGE_SIZE"`
	// FeedMorePageSize is the page size for incremental load-more requests (default 5).
	FeedMorePageSize int `mapstructure:"FEED_MORE_PAGE_SIZE"`
	// FeedPlaceholderFallback substitutes built-in placeholder posts when a refresh fails,
	// so the main screen is never empty. Off means a failed refresh only records the error.
	FeedPlaceholderFallback bool `mapstructure:"FEED_PLACEHOLDER_FALLBACK"`
	// OTLPEndpoint enables telemetry export when set (e.g. http://localhost:4317). Empty disables telemetry.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("HTTP_CONNECT_TIMEOUT", "10s")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("STORAGE_PATH", "kotekapu.db")
	v.SetDefault("FEED_PAGE_SIZE", 10)
	v.SetDefault("FEED_MORE_PAGE_SIZE", 5)
	v.SetDefault("FEED_PLACEHOLDER_FALLBACK", true)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API_BASE_URL must be set")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("config: API_BASE_URL %q is not a valid URL", cfg.APIBaseURL)
	}

	if cfg.StoragePath == "" {
		return nil, errors.New("config: STORAGE_PATH must be set")
	}
	if cfg.FeedPageSize <= 0 {
		return nil, errors.New("config: FEED_PAGE_SIZE must be positive")
	}
	if cfg.FeedMorePageSize <= 0 {
		return nil, errors.New("config: FEED_MORE_PAGE_SIZE must be positive")
	}

	return &cfg, nil
}

// ConnectTimeout parses HTTPConnectTimeout as a time.Duration. Returns 10s if unset or invalid.
func (c *Config) ConnectTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPConnectTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// RequestTimeout parses HTTPTimeout as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
