package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// locations tells load where to look. Tests replace it to avoid reading
// the real user config and environment.
type locations struct {
	userFile string
	workDir  string
	getenv   func(string) string
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file (archmap.toml or .archmap.toml in the working directory)
// 4. Environment variables
// 5. CLI flags registered on fs and parsed from args
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return load(fs, args, locations{
		userFile: findUserConfigFile(),
		workDir:  wd,
		getenv:   os.Getenv,
	})
}

func load(fs *flag.FlagSet, args []string, loc locations) (*Config, error) {
	cfg := &Config{WorkDir: loc.workDir}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if loc.userFile != "" {
		if err := loadConfigFile(cfg, loc.userFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", loc.userFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectFile := findProjectConfigFile(loc.workDir); projectFile != "" {
		if err := loadConfigFile(cfg, projectFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectFile, err)
		}
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, loc.getenv); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	finalizeConfig(cfg)

	return cfg, nil
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the
// file are overwritten and recorded with source.
func loadConfigFile(cfg *Config, path string, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	for _, f := range fields {
		if md.IsDefined(f) {
			cfg.Sources[f] = source
		}
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// finalizeConfig expands ~ and resolves a relative outputs dir against
// the working directory.
func finalizeConfig(cfg *Config) {
	cfg.OutputsDir = expandPath(cfg.OutputsDir)
	if cfg.OutputsDir != "" && !filepath.IsAbs(cfg.OutputsDir) && cfg.WorkDir != "" {
		cfg.OutputsDir = filepath.Join(cfg.WorkDir, cfg.OutputsDir)
	}
}
