// Package store reads and writes the registry and scope files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nibzard/archmap-go/pkg/task"
)

// Registry is the ordered list of root task records.
type Registry struct {
	Roots []*task.Task
}

// Load reads the registry from path. A missing file is an empty registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var roots []*task.Task
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if loc := findNull(roots, ""); loc != "" {
		return nil, fmt.Errorf("parse registry %s: null record at %s", path, loc)
	}

	return &Registry{Roots: roots}, nil
}

// findNull returns the location of the first null record in recs, such
// as "[0].subTasks[2]", or "" when there is none.
func findNull(recs []*task.Task, prefix string) string {
	for i, rec := range recs {
		loc := fmt.Sprintf("%s[%d]", prefix, i)
		if rec == nil {
			return loc
		}
		if sub := findNull(rec.SubTasks, loc+".subTasks"); sub != "" {
			return sub
		}
	}
	return ""
}

// Save writes the whole registry to path.
func (r *Registry) Save(path string) error {
	if err := writeJSON(path, r.Roots); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// FindRoot returns the first root matching ref, or nil.
// Nested sub-tasks are not searched.
func (r *Registry) FindRoot(ref task.Ref) *task.Task {
	for _, rec := range r.Roots {
		if rec.Matches(ref) {
			return rec
		}
	}
	return nil
}

// AddRoot appends rec as a new root record.
func (r *Registry) AddRoot(rec *task.Task) {
	r.Roots = append(r.Roots, rec)
}

// Len returns the number of root records.
func (r *Registry) Len() int {
	return len(r.Roots)
}

// writeJSON writes v with 2-space indentation and a trailing newline.
func writeJSON(path string, v any) error {
	if rv, ok := v.([]*task.Task); ok && rv == nil {
		v = []*task.Task{}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	return os.WriteFile(path, data, 0644)
}
