package config

import (
	"fmt"
	"os"
	"strconv"
)

const envPrefix = "JSGRAPH_"

// envBindings maps each environment variable (without prefix) to the field
// it overrides.
func envBindings(c *Config) map[string]*string {
	return map[string]*string{
		"BACKEND":      &c.Backend,
		"USER":         &c.User,
		"SQLITE_PATH":  &c.SQLite.Path,
		"REDIS_URL":    &c.Redis.URL,
		"REDIS_PREFIX": &c.Redis.Prefix,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_FORMAT":   &c.Log.Format,
	}
}

// ApplyEnvOverrides applies JSGRAPH_* environment variables to the config
// (e.g., JSGRAPH_BACKEND, JSGRAPH_SQLITE_PATH). Unset variables leave the
// field alone; a set but empty variable clears it.
func ApplyEnvOverrides(c *Config) error {
	for name, dst := range envBindings(c) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "VALIDATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to set VALIDATE from %sVALIDATE: %w", envPrefix, err)
		}
		c.Validate = b
	}

	return nil
}
