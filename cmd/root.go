// Package cmd implements the CLI command structure for archmap.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/archmap-go/internal/config"
	"github.com/nibzard/archmap-go/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// env carries what every command needs.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run executes the archmap CLI.
func Run(ctx context.Context, args []string) error {
	return Execute(ctx, args, os.Stdout, os.Stderr)
}

// Execute runs the CLI with explicit output streams.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("archmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	e := &env{
		cfg:    cfg,
		logger: logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps),
		stdout: stdout,
		stderr: stderr,
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 || strings.HasPrefix(remainingArgs[0], "-") {
		printUsage(fs, stderr)
		return fmt.Errorf("missing command")
	}
	subcommand := remainingArgs[0]
	remainingArgs = remainingArgs[1:]

	// Execute the subcommand
	switch subcommand {
	case "init":
		return initCommand(e, remainingArgs)
	case "add":
		return addCommand(e, remainingArgs)
	case "show":
		return showCommand(e, remainingArgs)
	case "scopes":
		return scopesCommand(e, remainingArgs)
	case "view":
		return viewCommand(ctx, e, remainingArgs)
	case "validate":
		return validateCommand(e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "archmap version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Archmap - record a hierarchy of planned work as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  archmap [global options] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init      Wipe the outputs dir and register the root task")
	fmt.Fprintln(w, "  add       Register a task in the existing outputs dir")
	fmt.Fprintln(w, "  show      Print the registry or one scope (tree, json, yaml)")
	fmt.Fprintln(w, "  scopes    List scope files and their task counts")
	fmt.Fprintln(w, "  validate  Check output files against the registry schema")
	fmt.Fprintln(w, "  view      Browse the registry in a terminal UI")
	fmt.Fprintln(w, "  config    Show effective configuration and its sources")
	fmt.Fprintln(w, "  version   Show version information")
	fmt.Fprintln(w, "  help      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'archmap <command> -h' for command options.")
}
