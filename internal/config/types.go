package config

import "github.com/nibzard/archmap-go/internal/outdir"

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultOutputsDir = outdir.DefaultDir
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for archmap.
type Config struct {
	// OutputsDir is where tasks.json and scope-tasks/ are written.
	OutputsDir string `toml:"outputs_dir"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// WorkDir is the directory relative paths resolve against.
	WorkDir string `toml:"-"`

	// Files lists the config files that were applied, in order.
	Files []string `toml:"-"`

	// Sources maps field names to where their value came from.
	Sources map[string]Source `toml:"-"`
}

// fields is the list of configurable field names for source tracking.
var fields = []string{
	"outputs_dir",
	"log_level",
	"log_format",
	"log_timestamps",
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return append([]string(nil), fields...)
}

// Value returns the string form of a configurable field.
func (c *Config) Value(field string) string {
	switch field {
	case "outputs_dir":
		return c.OutputsDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		if c.LogTimestamps {
			return "true"
		}
		return "false"
	}
	return ""
}

func setDefaults(cfg *Config) {
	cfg.OutputsDir = DefaultOutputsDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.Sources = make(map[string]Source, len(fields))
	for _, f := range fields {
		cfg.Sources[f] = SourceDefault
	}
}
