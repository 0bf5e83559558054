package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ProjectConfigNames are checked in order in the working directory.
var ProjectConfigNames = []string{"archmap.toml", ".archmap.toml"}

// findProjectConfigFile returns the first project config file in workDir.
func findProjectConfigFile(workDir string) string {
	for _, name := range ProjectConfigNames {
		path := filepath.Join(workDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file in the
// OS-specific config directory.
func findUserConfigFile() string {
	cfgDir := osUserConfigDir()
	if cfgDir == "" {
		return ""
	}
	userConfigPath := filepath.Join(cfgDir, "archmap", "archmap.toml")
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}
