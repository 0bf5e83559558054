package config

import (
	"fmt"
	"strconv"
)

// Environment variable names.
const (
	EnvOutputsDir    = "ARCHMAP_OUTPUTS_DIR"
	EnvLogLevel      = "ARCHMAP_LOG_LEVEL"
	EnvLogFormat     = "ARCHMAP_LOG_FORMAT"
	EnvLogTimestamps = "ARCHMAP_LOG_TIMESTAMPS"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvOutputsDir); v != "" {
		cfg.OutputsDir = v
		cfg.Sources["outputs_dir"] = SourceEnv
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["log_level"] = SourceEnv
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["log_format"] = SourceEnv
	}
	if v := getenv(EnvLogTimestamps); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogTimestamps, err)
		}
		cfg.LogTimestamps = b
		cfg.Sources["log_timestamps"] = SourceEnv
	}
	return nil
}
