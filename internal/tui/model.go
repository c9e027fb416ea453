// Package tui is the interactive review screen: a dry-run's files on the
// left, the selected file's diff on the right, and a selection to apply.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"routemend/internal/model"
	"routemend/internal/runner"
)

// keyMap holds the review key bindings.
type keyMap struct {
	Up, Down  key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Apply     key.Binding
	Filter    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	ToggleAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply selected")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ReviewModel holds the review state.
type ReviewModel struct {
	// Data
	Report runner.Report

	// UI state
	SelectedIdx int // Cursor position within FilteredIndices
	Selected    map[string]bool
	WindowSize  tea.WindowSizeMsg
	Confirmed   bool // Enter was pressed; apply Selected

	// Filter state
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // Indices into Report.Results that are shown
	FilterActive    bool

	// Components
	Preview viewport.Model
}

// NewReview builds the model for a dry-run report. Every file that would
// change starts selected.
func NewReview(rep runner.Report) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "path substring..."
	ti.CharLimit = 80
	ti.Width = 30

	m := ReviewModel{
		Report:      rep,
		Selected:    make(map[string]bool),
		InputBuffer: ti,
		Preview:     viewport.New(80, 20),
	}
	for _, p := range rep.Changed() {
		m.Selected[p] = true
	}
	m.applyFilter()
	m.syncPreview()
	return m
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// SelectedPaths returns the selected files in report order.
func (m ReviewModel) SelectedPaths() []string {
	var paths []string
	for _, r := range m.Report.Results {
		if m.Selected[r.Path] {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// current returns the result under the cursor.
func (m ReviewModel) current() (model.RunResult, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.FilteredIndices) {
		return model.RunResult{}, false
	}
	return m.Report.Results[m.FilteredIndices[m.SelectedIdx]], true
}

func selectable(r model.RunResult) bool {
	return r.Status == model.StatusOK && r.Changed
}
