package archmap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nibzard/archmap-go/pkg/task"
)

// Scope registers tasks on a run under a fixed scope.
type Scope struct {
	run         *Run
	name        string
	title       string
	description string
}

// NewScope returns a Scope bound to run. An empty title falls back to the
// scope name in title case.
func NewScope(run *Run, name, title, description string) *Scope {
	if title == "" {
		title = cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	}
	return &Scope{
		run:         run,
		name:        name,
		title:       title,
		description: description,
	}
}

// Name returns the scope tag.
func (s *Scope) Name() string {
	return s.name
}

// Title returns the human-readable title.
func (s *Scope) Title() string {
	return s.title
}

// Description returns the human-readable description.
func (s *Scope) Description() string {
	return s.description
}

// Ref returns a parent reference to the root named name in this scope.
func (s *Scope) Ref(name string) *task.Ref {
	return &task.Ref{Name: name, Scope: s.name}
}

// RegisterTask registers a copy of def with the scope filled in. A scope
// already set on def is kept.
func (s *Scope) RegisterTask(def task.Task) (any, error) {
	if def.Scope == "" {
		def.Scope = s.name
	}
	return s.run.RegisterTask(&def)
}
