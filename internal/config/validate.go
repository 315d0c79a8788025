package config

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.User == "" {
		return fmt.Errorf("user is required")
	}

	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite config: path is required")
		}
	case BackendRedis:
		if err := c.validateRedis(); err != nil {
			return fmt.Errorf("redis config: %w", err)
		}
	default:
		return fmt.Errorf("backend must be one of %s, %s, %s; got %q",
			BackendMemory, BackendSQLite, BackendRedis, c.Backend)
	}

	if err := c.validateLog(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(c.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return fmt.Errorf("url scheme must be redis or rediss, got %q", u.Scheme)
	}
	return nil
}

func (c *Config) validateLog() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
