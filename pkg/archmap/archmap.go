// Package archmap records a hierarchy of planned work as JSON files.
//
// A run owns an output directory holding tasks.json, the full registry of
// root task records, and scope-tasks/<scope>.json, the roots of each
// scope. Every registration reloads tasks.json, merges the new task as a
// root or as a sub-task of an existing root, rewrites tasks.json and every
// scope file, and then invokes the task's action.
package archmap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/archmap-go/internal/logging"
	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/store"
	"github.com/nibzard/archmap-go/pkg/task"
)

// InitOptions configures Initialize.
type InitOptions struct {
	// OutputsDir overrides the default ./archmap-outputs directory.
	OutputsDir  string
	Name        string
	Description string
	RootTask    *task.Task
	Logger      *log.Logger
}

// Run is the context of one archmap run. Registrations on a Run are
// serialized; an action may register more tasks on the same Run.
type Run struct {
	ID          string
	Name        string
	Description string

	layout outdir.Layout
	logger *log.Logger
	mu     sync.Mutex
}

// Option configures a Run returned by Open.
type Option func(*Run)

// WithLogger sets the run's logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Run) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithName sets the run's name and description.
func WithName(name, description string) Option {
	return func(r *Run) {
		r.Name = name
		r.Description = description
	}
}

// Initialize wipes the output directory, recreates it, and registers the
// root task. It returns the run and the root action's result.
func Initialize(opts InitOptions) (*Run, any, error) {
	if opts.RootTask == nil {
		return nil, nil, errors.New("root task is required")
	}

	run, err := Start(opts.OutputsDir, WithLogger(opts.Logger), WithName(opts.Name, opts.Description))
	if err != nil {
		return nil, nil, err
	}
	result, err := run.RegisterTask(opts.RootTask)
	return run, result, err
}

// Start wipes the output directory and recreates it without registering
// anything. Use it when the root task's action needs the run.
func Start(outputsDir string, opts ...Option) (*Run, error) {
	run, err := newRun(outputsDir, opts...)
	if err != nil {
		return nil, err
	}
	if err := run.layout.Reset(); err != nil {
		return nil, fmt.Errorf("initialize outputs: %w", err)
	}
	run.logger.Info("Reset output dir", "dir", run.layout.Dir, "run", run.Name, "run_id", run.ID)
	return run, nil
}

// Open binds a run to outputsDir without wiping it. Registrations append
// to whatever tasks.json already holds, as a run that skipped Initialize
// would.
func Open(outputsDir string, opts ...Option) (*Run, error) {
	run, err := newRun(outputsDir, opts...)
	if err != nil {
		return nil, err
	}
	if err := run.layout.Ensure(); err != nil {
		return nil, fmt.Errorf("open outputs: %w", err)
	}
	run.logger.Debug("Opened output dir", "dir", run.layout.Dir, "run_id", run.ID)
	return run, nil
}

func newRun(outputsDir string, opts ...Option) (*Run, error) {
	layout, err := outdir.Resolve(outputsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve outputs: %w", err)
	}
	run := &Run{
		ID:     uuid.Must(uuid.NewV7()).String(),
		layout: layout,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(run)
	}
	return run, nil
}

// Layout returns the paths the run writes to.
func (r *Run) Layout() outdir.Layout {
	return r.layout
}

// Tasks returns the current registry snapshot from disk.
func (r *Run) Tasks() ([]*task.Task, error) {
	reg, err := store.Load(r.layout.TasksFile)
	if err != nil {
		return nil, err
	}
	return reg.Roots, nil
}

// ScopeTasks returns the root records written for scope.
func (r *Run) ScopeTasks(scope string) ([]*task.Task, error) {
	return store.LoadScope(r.layout.ScopeDir, scope)
}

// RegisterTask merges def into the registry, persists the registry and
// the scope files, then invokes def's action with def and returns its
// result. A task without an action yields a nil result.
//
// If def.Parent names an existing root (same name and scope), def becomes
// that root's last sub-task with ParentName set. Otherwise def is added as
// a new root and the parent link is dropped. Either way def.Parent is
// cleared.
//
// The action always sees def.Scope as given. An unscoped task is written
// to the __no_scope file with the sentinel stamped on that copy only.
func (r *Run) RegisterTask(def *task.Task) (any, error) {
	if def == nil {
		return nil, errors.New("task definition is nil")
	}

	if err := r.merge(def); err != nil {
		return nil, err
	}

	if def.Action == nil {
		return nil, nil
	}
	result, err := def.Action(def)
	if err != nil {
		return result, fmt.Errorf("task %q action: %w", def.Name, err)
	}
	return result, nil
}

// merge performs the load, merge, save and partition cycle under the run
// lock. The lock is released before the action runs.
func (r *Run) merge(def *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, err := store.Load(r.layout.TasksFile)
	if err != nil {
		return err
	}

	parentFound := false
	if def.Parent != nil {
		ref := *def.Parent
		def.Parent = nil
		if parent := reg.FindRoot(ref); parent != nil {
			def.ParentName = parent.Name
			parent.AddSubTask(def)
			parentFound = true
		} else {
			r.logger.Warn("Parent not found, registering as root",
				"task", def.Name, "parent", ref.Name, "parent_scope", ref.Scope, "run_id", r.ID)
		}
	}
	if !parentFound {
		reg.AddRoot(def)
	}

	if err := reg.Save(r.layout.TasksFile); err != nil {
		return err
	}
	if err := store.WriteScopes(r.layout.ScopeDir, store.Partition(reg.Roots)); err != nil {
		return err
	}

	r.logger.Debug("Registered task",
		"task", def.Name, "scope", def.Scope, "parent", def.ParentName, "roots", reg.Len(), "run_id", r.ID)
	return nil
}
