// Package task defines the task record persisted by an archmap run.
package task

import "encoding/json"

// SentinelScope is the scope used for partitioning records that have none.
const SentinelScope = "__no_scope"

// Action is the computation attached to a task definition. It runs once,
// after the task has been merged into the registry and persisted.
type Action func(t *Task) (any, error)

// Metadata holds arbitrary task metadata.
type Metadata map[string]any

// Ref identifies a root task by name and scope.
type Ref struct {
	Name  string
	Scope string
}

// Task is a unit of documented work with optional nested sub-tasks.
//
// Field order is the serialization order. Unknown keys read from a file
// follow SubTasks, sorted. ParentName is kept last so a promoted child
// always ends with its parent link.
type Task struct {
	Name        string   `json:"name" yaml:"name"`
	Scope       string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Summary     Summary  `json:"summary,omitzero" yaml:"summary,omitempty"`
	Notes       []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Meta        Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
	Concerns    []string `json:"concerns,omitempty" yaml:"concerns,omitempty"`
	Assumptions []string `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
	Questions   []string `json:"questions,omitempty" yaml:"questions,omitempty"`
	Weight      *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Ticketed    *bool    `json:"ticketed,omitempty" yaml:"ticketed,omitempty"`
	SubTasks    []*Task  `json:"subTasks,omitempty" yaml:"subTasks,omitempty"`
	ParentName  string   `json:"parentName,omitempty" yaml:"parentName,omitempty"`

	// Parent is only meaningful while registering. It is resolved into
	// ParentName or dropped, and never persisted.
	Parent *Ref   `json:"-" yaml:"-"`
	Action Action `json:"-" yaml:"-"`

	// extra holds keys from a hand-edited file that no field above
	// covers. They are written back after SubTasks.
	extra map[string]json.RawMessage
}

// Ref returns a reference to t suitable for a child's Parent field.
func (t *Task) Ref() *Ref {
	return &Ref{Name: t.Name, Scope: t.Scope}
}

// Matches reports whether t is the task identified by ref.
// An empty scope only matches an empty scope, never SentinelScope.
func (t *Task) Matches(ref Ref) bool {
	return t.Name == ref.Name && t.Scope == ref.Scope
}

// ResolvedScope returns the scope used for partitioning.
func (t *Task) ResolvedScope() string {
	if t.Scope == "" {
		return SentinelScope
	}
	return t.Scope
}

// AddSubTask appends child to t's sub-tasks.
func (t *Task) AddSubTask(child *Task) {
	t.SubTasks = append(t.SubTasks, child)
}

// Count returns the number of records in t's tree, t included.
func (t *Task) Count() int {
	n := 1
	for _, sub := range t.SubTasks {
		n += sub.Count()
	}
	return n
}

// Float returns a pointer to v, for Weight.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for Ticketed.
func Bool(v bool) *bool {
	return &v
}
