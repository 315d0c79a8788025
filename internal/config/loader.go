package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the validated configuration. Defaults are applied first, then
// the YAML file at path (skipped when path is empty), then environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Decoding over the defaults keeps every field the file omits.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
		}
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment variable overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
