// Package config loads server settings from an optional YAML file and
// HOUSEBOARD_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/houseboard/internal/wizardworld"
)

// Config holds the server settings. Zero values are filled from Default.
type Config struct {
	Port        string        `yaml:"port,omitempty"`
	DBPath      string        `yaml:"db_path,omitempty"`
	UpstreamURL string        `yaml:"upstream_url,omitempty"`
	SessionTTL  time.Duration `yaml:"session_ttl,omitempty"`
	// CleanupSchedule is a cron expression for expiring idle sessions.
	CleanupSchedule string    `yaml:"cleanup_schedule,omitempty"`
	TraitRateLimit  int       `yaml:"trait_rate_limit,omitempty"`
	Log             LogConfig `yaml:"log,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Port:            "8080",
		DBPath:          ":memory:",
		UpstreamURL:     wizardworld.DefaultBaseURL,
		SessionTTL:      24 * time.Hour,
		CleanupSchedule: "@every 15m",
		TraitRateLimit:  60,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty) over the defaults and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HOUSEBOARD_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("HOUSEBOARD_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("HOUSEBOARD_UPSTREAM_URL"); v != "" {
		c.UpstreamURL = v
	}
	if v := os.Getenv("HOUSEBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HOUSEBOARD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("HOUSEBOARD_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HOUSEBOARD_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.TraitRateLimit <= 0 {
		return fmt.Errorf("trait_rate_limit must be positive, got %d", c.TraitRateLimit)
	}
	return nil
}
