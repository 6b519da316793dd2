// Package config loads the server configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "24h" or
// "90s" instead of nanosecond integers.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// Auth configures caller-identity resolution. APIKeys maps a static key to
// the subject it authenticates; JWTSecret enables HS256 bearer tokens. With
// both empty, requests run anonymously.
type Auth struct {
	APIKeys   map[string]string `yaml:"api_keys"`
	JWTSecret string            `yaml:"jwt_secret"`
}

// Config is the full server configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	MessagePath string `yaml:"message_path"`
	EventsPath  string `yaml:"events_path"`

	SessionTTL        Duration `yaml:"session_ttl"`
	SweepInterval     Duration `yaml:"sweep_interval"`
	KeepAliveInterval Duration `yaml:"keepalive_interval"`

	LogLevel string `yaml:"log_level"`

	Auth Auth `yaml:"auth"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:              ":8080",
		MessagePath:       "/message",
		EventsPath:        "/events",
		SessionTTL:        Duration{24 * time.Hour},
		SweepInterval:     Duration{5 * time.Minute},
		KeepAliveInterval: Duration{30 * time.Second},
		LogLevel:          "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file and keeps the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// Environment variables override file values so deployments can tweak a
// shared config file without editing it.
func (c *Config) applyEnv() {
	if v := os.Getenv("MCP_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("MCP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MCP_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("MCP_SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = Duration{parsed}
		}
	}
}

// SlogLevel maps the configured log level onto slog's levels, defaulting to
// info for anything unrecognized.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
