// Package config loads jsctl configuration: defaults, then a YAML file, then
// JSGRAPH_* environment variables, then validation.
package config

import (
	"log/slog"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the complete jsctl configuration.
type Config struct {
	// Backend selects where entities are stored: memory, sqlite or redis.
	Backend string `yaml:"backend"`

	// User scopes every stored row; one user's graph is invisible to another.
	User string `yaml:"user"`

	// Validate turns on schema validation of stored records before they are
	// loaded.
	Validate bool `yaml:"validate"`

	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Backend:  BackendSQLite,
		User:     "default",
		Validate: true,
		SQLite:   SQLiteConfig{Path: "jsgraph.db"},
		Redis: RedisConfig{
			URL:    "redis://localhost:6379",
			Prefix: "jsgraph",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// SlogLevel returns the configured log level. Call Validate first; an
// unparsable level falls back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
