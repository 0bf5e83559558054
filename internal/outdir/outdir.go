// Package outdir resolves and prepares the output directory of a run.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDir is the output directory name used when none is configured.
	DefaultDir = "archmap-outputs"

	// ScopeDir holds one JSON file per scope.
	ScopeDir = "scope-tasks"

	// TasksFile is the full registry snapshot.
	TasksFile = "tasks.json"
)

// Layout is the set of paths a run writes to.
type Layout struct {
	Dir       string
	ScopeDir  string
	TasksFile string
}

// Resolve builds the layout for baseDir. An empty baseDir selects
// DefaultDir under the working directory; relative paths are resolved
// against the working directory.
func Resolve(baseDir string) (Layout, error) {
	if baseDir == "" {
		baseDir = DefaultDir
	}
	if !filepath.IsAbs(baseDir) {
		wd, err := os.Getwd()
		if err != nil {
			return Layout{}, fmt.Errorf("getting working directory: %w", err)
		}
		baseDir = filepath.Join(wd, baseDir)
	}
	dir := filepath.Clean(baseDir)
	return Layout{
		Dir:       dir,
		ScopeDir:  filepath.Join(dir, ScopeDir),
		TasksFile: filepath.Join(dir, TasksFile),
	}, nil
}

// Reset deletes the output directory if present and recreates it empty,
// including the scope subdirectory.
func (l Layout) Reset() error {
	if l.Dir == "" {
		return fmt.Errorf("output dir is empty")
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return fmt.Errorf("remove output dir: %w", err)
	}
	return l.Ensure()
}

// Ensure creates the output directories if they are missing and leaves
// existing contents alone.
func (l Layout) Ensure() error {
	if l.Dir == "" {
		return fmt.Errorf("output dir is empty")
	}
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(l.ScopeDir, 0755); err != nil {
		return fmt.Errorf("create scope dir: %w", err)
	}
	return nil
}

// ScopeFile returns the path of the file holding scope's root records.
func (l Layout) ScopeFile(scope string) string {
	return filepath.Join(l.ScopeDir, scope+".json")
}
