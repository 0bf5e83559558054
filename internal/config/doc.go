// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (OS-specific config directory)
// 3. Project config file (archmap.toml or .archmap.toml in the working directory)
// 4. Environment variables (ARCHMAP_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - Windows: %APPDATA%\archmap\archmap.toml
// - macOS: ~/Library/Application Support/archmap/archmap.toml
// - Linux/BSD: $XDG_CONFIG_HOME/archmap/archmap.toml or ~/.config/archmap/archmap.toml
//
// Example archmap.toml:
//
//	outputs_dir = "docs/architecture"
//	log_level = "debug"
//	log_format = "logfmt"
//	log_timestamps = true
package config
