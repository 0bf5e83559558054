package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/store"
	"github.com/nibzard/archmap-go/pkg/task"
)

func writeRegistry(t *testing.T) outdir.Layout {
	t.Helper()
	layout, err := outdir.Resolve(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := layout.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	root := &task.Task{Name: "root", Scope: "core", Summary: task.Text("the system"), Weight: task.Float(3)}
	root.AddSubTask(&task.Task{Name: "child", Scope: "core", Notes: []string{"careful"}, ParentName: "root"})
	reg := &store.Registry{Roots: []*task.Task{root, {Name: "loose"}, {Name: "db", Scope: "infra"}}}
	if err := reg.Save(layout.TasksFile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return layout
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRows(t *testing.T) {
	m := newModel(writeRegistry(t))
	m.Init()

	var got []string
	for _, r := range m.rows {
		got = append(got, strings.Repeat(".", r.depth)+r.rec.Name)
	}
	want := []string{"root", ".child", "loose", "db"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("rows: got %v, want %v", got, want)
	}
	if strings.Join(m.scopes, ",") != "core,"+task.SentinelScope+",infra" {
		t.Errorf("scopes: got %v", m.scopes)
	}
}

func TestModelNavigation(t *testing.T) {
	m := newModel(writeRegistry(t))
	m.Init()

	m.Update(key("down"))
	if m.cursor != 1 {
		t.Fatalf("cursor after down: got %d, want 1", m.cursor)
	}
	view := m.View()
	if !strings.Contains(view, "Parent: root") || !strings.Contains(view, "careful") {
		t.Errorf("detail for child missing from view:\n%s", view)
	}

	m.Update(key("up"))
	m.Update(key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor should stop at 0, got %d", m.cursor)
	}

	for i := 0; i < 10; i++ {
		m.Update(key("j"))
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor should stop at last row, got %d", m.cursor)
	}
}

func TestModelScopeFilter(t *testing.T) {
	m := newModel(writeRegistry(t))
	m.Init()

	m.Update(key("tab"))
	if m.scopeLabel() != "core" || len(m.rows) != 2 {
		t.Errorf("core filter: label %q, %d rows", m.scopeLabel(), len(m.rows))
	}
	m.Update(key("tab"))
	m.Update(key("tab"))
	if m.scopeLabel() != "infra" || len(m.rows) != 1 || m.rows[0].rec.Name != "db" {
		t.Errorf("infra filter: label %q, rows %d", m.scopeLabel(), len(m.rows))
	}
	m.Update(key("tab"))
	if m.scopeLabel() != "all" || len(m.rows) != 4 {
		t.Errorf("filter should wrap to all: label %q, rows %d", m.scopeLabel(), len(m.rows))
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(writeRegistry(t))
	m.Init()

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelEmptyRegistry(t *testing.T) {
	layout, err := outdir.Resolve(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := layout.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	m := newModel(layout)
	m.Init()
	if m.loadErr != nil {
		t.Fatalf("a missing registry should load as empty, got %v", m.loadErr)
	}
	if !strings.Contains(m.View(), "No tasks registered") {
		t.Errorf("empty view:\n%s", m.View())
	}
}

func TestModelLoadError(t *testing.T) {
	layout := writeRegistry(t)
	if err := os.WriteFile(layout.TasksFile, []byte("{broken"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := newModel(layout)
	m.Init()
	if m.loadErr == nil {
		t.Fatal("expected load error, got nil")
	}
	if !strings.Contains(m.View(), "Error loading tasks") {
		t.Errorf("error view:\n%s", m.View())
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("a buffer is not a TTY")
	}
}
