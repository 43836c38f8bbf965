// Package config provides the configuration structure for tts-studio.
package config

import (
	"fmt"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the configuration file leaves a field unset.
const (
	DefaultListenAddress  = ":8080"
	DefaultProviderURL    = "https://api.elevenlabs.io"
	DefaultTimeoutSeconds = 60
	DefaultBatchDelayMS   = 500
)

// ServerConfig holds the configuration for the boundary HTTP server.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	APIKeyEnvVar  string `toml:"api_key_env_var"`
}

// ProviderConfig holds the configuration for the upstream speech provider.
type ProviderConfig struct {
	BaseURL        string `toml:"base_url"`
	ModelID        string `toml:"model_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// BatchConfig holds the configuration for batch generation pacing.
type BatchConfig struct {
	RequestDelayMS int `toml:"request_delay_ms"`
}

// NATSConfig holds the configuration for the optional archive delivery bucket.
type NATSConfig struct {
	URL                string `toml:"url"`
	ArchiveBucket      string `toml:"archive_bucket"`
	ConnectTimeoutSecs int    `toml:"connect_timeout_seconds"`
	PublishArchives    bool   `toml:"publish_archives"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Provider ProviderConfig `toml:"provider"`
	Batch    BatchConfig    `toml:"batch"`
	NATS     NATSConfig     `toml:"nats"`
	Paths    PathsConfig    `toml:"paths"`
}

// Load loads the configuration for tts-studio and applies defaults.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.Normalize()

	return &cfg, nil
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}

	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultProviderURL
	}

	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Batch.RequestDelayMS <= 0 {
		c.Batch.RequestDelayMS = DefaultBatchDelayMS
	}
}

// ProviderTimeout returns the upstream request timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// RequestDelay returns the delay between consecutive batch requests.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Batch.RequestDelayMS) * time.Millisecond
}
