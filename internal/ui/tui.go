// Package ui provides an optional terminal viewer for a run's outputs.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/store"
	"github.com/nibzard/archmap-go/pkg/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	scopeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	sectionStyle  = lipgloss.NewStyle().Underline(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	refreshPeriod = 2 * time.Second
)

// Run starts the viewer over layout. It refreshes from disk periodically
// so registrations made by another process show up.
func Run(ctx context.Context, layout outdir.Layout) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("view requires a TTY")
	}
	program := tea.NewProgram(newModel(layout), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type row struct {
	depth int
	rec   *task.Task
}

type model struct {
	layout       outdir.Layout
	roots        []*task.Task
	scopes       []string
	scopeIdx     int // 0 is all scopes
	rows         []row
	cursor       int
	showDetail   bool
	showHelp     bool
	loadErr      error
	tickInterval time.Duration
}

type tickMsg time.Time

func newModel(layout outdir.Layout) *model {
	return &model{
		layout:       layout,
		showDetail:   true,
		tickInterval: refreshPeriod,
	}
}

func (m *model) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "tab":
			m.scopeIdx = (m.scopeIdx + 1) % (len(m.scopes) + 1)
			m.cursor = 0
			m.buildRows()
		case "enter", " ":
			m.showDetail = !m.showDetail
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("archmap") + "  " + scopeStyle.Render(m.layout.Dir) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks: "+m.loadErr.Error()) + "\n\n")
		writeFooter(&b)
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Scope: %s (tab to cycle)\n\n", m.scopeLabel()))
	if len(m.rows) == 0 {
		b.WriteString("  No tasks registered.\n\n")
		writeFooter(&b)
		return b.String()
	}

	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + r.rec.Name
		if r.depth == 0 && r.rec.Scope != "" {
			line += " " + scopeStyle.Render("["+r.rec.Scope+"]")
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")

	if m.showDetail && m.cursor < len(m.rows) {
		writeDetail(&b, m.rows[m.cursor].rec)
	}
	writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) refresh() {
	reg, err := store.Load(m.layout.TasksFile)
	if err != nil {
		m.loadErr = err
		m.roots = nil
		m.rows = nil
		return
	}
	m.loadErr = nil
	m.roots = reg.Roots

	m.scopes = m.scopes[:0]
	seen := make(map[string]bool)
	for _, rec := range m.roots {
		s := rec.ResolvedScope()
		if !seen[s] {
			seen[s] = true
			m.scopes = append(m.scopes, s)
		}
	}
	if m.scopeIdx > len(m.scopes) {
		m.scopeIdx = 0
	}
	m.buildRows()
}

func (m *model) scopeLabel() string {
	if m.scopeIdx == 0 {
		return "all"
	}
	return m.scopes[m.scopeIdx-1]
}

func (m *model) buildRows() {
	m.rows = m.rows[:0]
	for _, rec := range m.roots {
		if m.scopeIdx > 0 && rec.ResolvedScope() != m.scopes[m.scopeIdx-1] {
			continue
		}
		m.rows = appendRows(m.rows, rec, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func appendRows(rows []row, rec *task.Task, depth int) []row {
	rows = append(rows, row{depth: depth, rec: rec})
	for _, sub := range rec.SubTasks {
		rows = appendRows(rows, sub, depth+1)
	}
	return rows
}

func writeDetail(b *strings.Builder, rec *task.Task) {
	b.WriteString(sectionStyle.Render(rec.Name) + "\n")
	if rec.ParentName != "" {
		b.WriteString(fmt.Sprintf("  Parent: %s\n", rec.ParentName))
	}
	if !rec.Summary.IsZero() {
		for _, line := range rec.Summary.Lines() {
			b.WriteString("  " + line + "\n")
		}
	}
	if rec.Weight != nil {
		b.WriteString(fmt.Sprintf("  Weight: %g\n", *rec.Weight))
	}
	if rec.Ticketed != nil {
		b.WriteString(fmt.Sprintf("  Ticketed: %t\n", *rec.Ticketed))
	}
	writeList(b, "Notes", rec.Notes)
	writeList(b, "Concerns", rec.Concerns)
	writeList(b, "Assumptions", rec.Assumptions)
	writeList(b, "Questions", rec.Questions)
	b.WriteString("\n")
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("  " + label + ":\n")
	for _, item := range items {
		b.WriteString("    - " + item + "\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k down/j  Move selection\n")
	b.WriteString("  tab          Cycle scope filter\n")
	b.WriteString("  enter        Toggle details\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
