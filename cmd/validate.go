package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/schema"
	"github.com/nibzard/archmap-go/internal/store"
)

// validateCommand checks tasks.json and every scope file against the
// registry schema, and that the scope files partition the registry roots.
func validateCommand(e *env, args []string) error {
	fs := newCommandFlags("validate", e)
	quiet := fs.Bool("q", false, "Only print problems")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	layout, err := outdir.Resolve(e.cfg.OutputsDir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(layout.TasksFile); err != nil {
		return fmt.Errorf("no registry in %s: %w", layout.Dir, err)
	}

	scopes, err := store.ListScopes(layout.ScopeDir)
	if err != nil {
		return err
	}
	files := []string{layout.TasksFile}
	for _, s := range scopes {
		files = append(files, layout.ScopeFile(s))
	}

	problems := 0
	for _, path := range files {
		result, err := schema.ValidateFile(path)
		if err != nil {
			fmt.Fprintf(e.stdout, "FAIL %s: %v\n", path, err)
			problems++
			continue
		}
		if result.Valid {
			if !*quiet {
				fmt.Fprintf(e.stdout, "ok   %s\n", path)
			}
			continue
		}
		problems += len(result.Errors)
		fmt.Fprintf(e.stdout, "FAIL %s\n", path)
		for _, verr := range result.Errors {
			fmt.Fprintf(e.stdout, "     %v\n", verr)
		}
	}
	if problems > 0 {
		return fmt.Errorf("validation failed: %d problem(s)", problems)
	}

	if err := checkPartition(layout, scopes); err != nil {
		fmt.Fprintf(e.stdout, "FAIL %s: %v\n", layout.ScopeDir, err)
		return fmt.Errorf("validation failed: %w", err)
	}
	if !*quiet {
		fmt.Fprintf(e.stdout, "ok   %d scope file(s) match the registry\n", len(scopes))
	}
	return nil
}

var errPartition = errors.New("scope files do not match the registry")

// checkPartition checks that each scope file holds exactly the roots of
// that scope in tasks.json, in registry order with sub-tasks included.
func checkPartition(layout outdir.Layout, scopes []string) error {
	reg, err := store.Load(layout.TasksFile)
	if err != nil {
		return err
	}
	want := make(map[string][]byte)
	for _, g := range store.Partition(reg.Roots) {
		data, err := json.Marshal(g.Records)
		if err != nil {
			return fmt.Errorf("encode scope %q: %w", g.Scope, err)
		}
		want[g.Scope] = data
	}

	for _, s := range scopes {
		recs, err := store.LoadScope(layout.ScopeDir, s)
		if err != nil {
			return err
		}
		expected, ok := want[s]
		if !ok {
			if len(recs) == 0 {
				continue
			}
			return fmt.Errorf("%w: scope %q has %d root(s), registry has none", errPartition, s, len(recs))
		}
		got, err := json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("encode scope %q: %w", s, err)
		}
		if !bytes.Equal(got, expected) {
			return fmt.Errorf("%w: scope %q differs from its registry roots", errPartition, s)
		}
		delete(want, s)
	}
	if len(want) > 0 {
		missing := slices.Sorted(maps.Keys(want))
		return fmt.Errorf("%w: missing scope file(s) %s", errPartition, strings.Join(missing, ", "))
	}
	return nil
}
