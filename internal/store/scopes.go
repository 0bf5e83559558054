package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nibzard/archmap-go/pkg/task"
)

// Group is the set of root records sharing a resolved scope.
type Group struct {
	Scope   string
	Records []*task.Task
}

// Partition groups roots by resolved scope, in order of first appearance.
// Records without a scope land in task.SentinelScope and are copied with
// that scope stamped on them; roots itself is not modified.
func Partition(roots []*task.Task) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, rec := range roots {
		scope := rec.ResolvedScope()
		if rec.Scope == "" {
			stamped := *rec
			stamped.Scope = scope
			rec = &stamped
		}

		i, ok := index[scope]
		if !ok {
			i = len(groups)
			index[scope] = i
			groups = append(groups, Group{Scope: scope})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	return groups
}

// WriteScopes writes one <scope>.json file per group into dir.
// It stops at the first failure. Scope names are used as file names
// unchecked, so a scope containing a path separator or ".." writes
// outside dir; callers taking scopes from user input should reject those
// with ValidScopeName.
func WriteScopes(dir string, groups []Group) error {
	for _, g := range groups {
		path := filepath.Join(dir, g.Scope+".json")
		if err := writeJSON(path, g.Records); err != nil {
			return fmt.Errorf("write scope %q: %w", g.Scope, err)
		}
	}
	return nil
}

// ValidScopeName reports whether scope can be used as a scope file name
// inside the scope directory. The empty scope is valid.
func ValidScopeName(scope string) bool {
	if scope == "" {
		return true
	}
	return scope != "." && scope != ".." && filepath.Base(scope) == scope && !strings.ContainsAny(scope, `/\`)
}

// LoadScope reads the root records written for scope.
func LoadScope(dir, scope string) ([]*task.Task, error) {
	reg, err := Load(filepath.Join(dir, scope+".json"))
	if err != nil {
		return nil, err
	}
	return reg.Roots, nil
}

// ListScopes returns the scope names that have a file in dir, sorted.
// A missing dir yields no scopes.
func ListScopes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list scopes: %w", err)
	}

	var scopes []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		scopes = append(scopes, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(scopes)
	return scopes, nil
}
