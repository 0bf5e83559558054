package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/archmap-go/internal/config"
	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/store"
	"github.com/nibzard/archmap-go/pkg/archmap"
	"github.com/nibzard/archmap-go/pkg/task"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// metaFlags collects repeatable key=value pairs. Values that parse as JSON
// keep their JSON type; anything else is stored as a string.
type metaFlags task.Metadata

func (m *metaFlags) String() string {
	keys := make([]string, 0, len(*m))
	for k := range *m {
		keys = append(keys, k)
	}
	return strings.Join(keys, ",")
}

func (m *metaFlags) Set(v string) error {
	key, raw, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("meta must be key=value, got %q", v)
	}
	if *m == nil {
		*m = make(metaFlags)
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	(*m)[strings.TrimSpace(key)] = value
	return nil
}

func newCommandFlags(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet("archmap "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func summaryOf(s string) task.Summary {
	if s == "" {
		return task.Summary{}
	}
	return task.Text(s)
}

// checkScope rejects scope names that would escape the scope directory.
func checkScope(flagName, scope string) error {
	if !store.ValidScopeName(scope) {
		return fmt.Errorf("invalid %s %q: must be a plain file name", flagName, scope)
	}
	return nil
}

// initCommand wipes the outputs directory and registers a root task.
func initCommand(e *env, args []string) error {
	fs := newCommandFlags("init", e)
	name := fs.String("name", "", "Root task name (required)")
	scope := fs.String("scope", "", "Root task scope")
	summary := fs.String("summary", "", "Root task summary")
	description := fs.String("description", "", "Run description")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if err := checkScope("--scope", *scope); err != nil {
		return err
	}

	run, _, err := archmap.Initialize(archmap.InitOptions{
		OutputsDir:  e.cfg.OutputsDir,
		Name:        *name,
		Description: *description,
		RootTask:    &task.Task{Name: *name, Scope: *scope, Summary: summaryOf(*summary)},
		Logger:      e.logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "Initialized %s\n", run.Layout().Dir)
	return nil
}

// addCommand registers one task into the existing outputs directory.
func addCommand(e *env, args []string) error {
	fs := newCommandFlags("add", e)
	name := fs.String("name", "", "Task name (required)")
	scope := fs.String("scope", "", "Task scope")
	parent := fs.String("parent", "", "Parent task name")
	parentScope := fs.String("parent-scope", "", "Parent task scope (defaults to --scope)")
	summary := fs.String("summary", "", "Task summary")
	weight := fs.String("weight", "", "Relative weight")
	ticketed := fs.Bool("ticketed", false, "Mark the task as ticketed")
	var notes, concerns, assumptions, questions stringList
	var meta metaFlags
	fs.Var(&notes, "note", "Note (repeatable)")
	fs.Var(&concerns, "concern", "Concern (repeatable)")
	fs.Var(&assumptions, "assumption", "Assumption (repeatable)")
	fs.Var(&questions, "question", "Open question (repeatable)")
	fs.Var(&meta, "meta", "Metadata key=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if err := checkScope("--scope", *scope); err != nil {
		return err
	}

	def := &task.Task{
		Name:        *name,
		Scope:       *scope,
		Summary:     summaryOf(*summary),
		Notes:       notes,
		Meta:        task.Metadata(meta),
		Concerns:    concerns,
		Assumptions: assumptions,
		Questions:   questions,
	}
	if *weight != "" {
		w, err := strconv.ParseFloat(*weight, 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", *weight, err)
		}
		def.Weight = task.Float(w)
	}
	setFlags := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["ticketed"] {
		def.Ticketed = task.Bool(*ticketed)
	}
	if *parent != "" {
		ps := *scope
		if setFlags["parent-scope"] {
			ps = *parentScope
		}
		if err := checkScope("--parent-scope", ps); err != nil {
			return err
		}
		def.Parent = &task.Ref{Name: *parent, Scope: ps}
	}

	run, err := archmap.Open(e.cfg.OutputsDir, archmap.WithLogger(e.logger))
	if err != nil {
		return err
	}
	if _, err := run.RegisterTask(def); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Registered %s\n", *name)
	return nil
}

// showCommand prints the registry, or one scope file, without touching disk.
func showCommand(e *env, args []string) error {
	fs := newCommandFlags("show", e)
	scope := fs.String("scope", "", "Show only this scope file")
	format := fs.String("format", "tree", "Output format (tree, json, yaml)")

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
	var recs []*task.Task
	if *scope != "" {
		recs, err = store.LoadScope(layout.ScopeDir, *scope)
	} else {
		var reg *store.Registry
		reg, err = store.Load(layout.TasksFile)
		if reg != nil {
			recs = reg.Roots
		}
	}
	if err != nil {
		return err
	}

	switch *format {
	case "tree":
		if len(recs) == 0 {
			fmt.Fprintln(e.stdout, "No tasks registered.")
			return nil
		}
		for _, rec := range recs {
			printTree(e.stdout, rec, 0)
		}
		return nil
	case "json":
		if recs == nil {
			recs = []*task.Task{}
		}
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		fmt.Fprintln(e.stdout, string(data))
		return nil
	case "yaml":
		enc := yaml.NewEncoder(e.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want tree, json or yaml)", *format)
	}
}

func printTree(w io.Writer, rec *task.Task, depth int) {
	indent := strings.Repeat("  ", depth)
	line := indent + rec.Name
	if depth == 0 && rec.Scope != "" {
		line += " [" + rec.Scope + "]"
	}
	if !rec.Summary.IsZero() {
		line += " - " + strings.Join(rec.Summary.Lines(), " ")
	}
	fmt.Fprintln(w, line)
	for _, sub := range rec.SubTasks {
		printTree(w, sub, depth+1)
	}
}

// scopesCommand lists scope files with their root and total task counts.
func scopesCommand(e *env, args []string) error {
	fs := newCommandFlags("scopes", e)
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
	scopes, err := store.ListScopes(layout.ScopeDir)
	if err != nil {
		return err
	}
	if len(scopes) == 0 {
		fmt.Fprintln(e.stdout, "No scopes found.")
		return nil
	}

	width := len("SCOPE")
	for _, s := range scopes {
		width = max(width, len(s))
	}
	fmt.Fprintf(e.stdout, "%-*s  %5s  %5s\n", width, "SCOPE", "ROOTS", "TASKS")
	for _, s := range scopes {
		recs, err := store.LoadScope(layout.ScopeDir, s)
		if err != nil {
			return err
		}
		total := 0
		for _, rec := range recs {
			total += rec.Count()
		}
		fmt.Fprintf(e.stdout, "%-*s  %5d  %5d\n", width, s, len(recs), total)
	}
	return nil
}

// configCommand prints the effective configuration and where each value came from.
func configCommand(e *env, args []string) error {
	fs := newCommandFlags("config", e)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, "Archmap Configuration")
	fmt.Fprintln(e.stdout, "=====================")
	fmt.Fprintln(e.stdout)
	for _, f := range e.cfg.Files {
		fmt.Fprintf(e.stdout, "Loaded: %s\n", f)
	}
	if len(e.cfg.Files) > 0 {
		fmt.Fprintln(e.stdout)
	}
	for _, f := range config.Fields() {
		fmt.Fprintf(e.stdout, "%-15s %-40s (%s)\n", f, e.cfg.Value(f), e.cfg.Sources[f])
	}
	return nil
}
