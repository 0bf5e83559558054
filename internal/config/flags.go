package config

import "flag"

// parseFlags defines the global flags on fs, parses args, and applies
// only the flags that were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("archmap", flag.ContinueOnError)
	}

	var (
		outputsDir    = cfg.OutputsDir
		logLevel      = cfg.LogLevel
		logFormat     = cfg.LogFormat
		logTimestamps = cfg.LogTimestamps
	)
	fs.StringVar(&outputsDir, "outputs", outputsDir, "Output directory for tasks.json and scope-tasks/")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Include timestamps in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "outputs":
			cfg.OutputsDir = outputsDir
			cfg.Sources["outputs_dir"] = SourceFlag
		case "log-level":
			cfg.LogLevel = logLevel
			cfg.Sources["log_level"] = SourceFlag
		case "log-format":
			cfg.LogFormat = logFormat
			cfg.Sources["log_format"] = SourceFlag
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
			cfg.Sources["log_timestamps"] = SourceFlag
		}
	})
	return nil
}
