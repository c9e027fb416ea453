package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles events.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Preview.Width = max(20, msg.Width/2-4)
		m.Preview.Height = max(4, msg.Height-8)
		m.syncPreview()
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.applyFilter()
				m.syncPreview()
				return m, nil
			case tea.KeyEsc:
				m.clearFilter()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			m.applyFilter()
			m.syncPreview()
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case msg.Type == tea.KeyEsc:
			if m.FilterActive {
				m.clearFilter()
			}
			return m, nil
		case key.Matches(msg, keys.Up):
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.syncPreview()
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
				m.syncPreview()
			}
			return m, nil
		case key.Matches(msg, keys.Toggle):
			if r, ok := m.current(); ok && selectable(r) {
				m.Selected[r.Path] = !m.Selected[r.Path]
			}
			return m, nil
		case key.Matches(msg, keys.ToggleAll):
			m.toggleAll()
			return m, nil
		case key.Matches(msg, keys.Apply):
			m.Confirmed = true
			return m, tea.Quit
		case key.Matches(msg, keys.Filter):
			m.InputMode = true
			m.InputBuffer.SetValue("")
			cmd = m.InputBuffer.Focus()
			return m, tea.Batch(cmd, textinput.Blink)
		}
	}

	// Remaining keys and mouse events scroll the preview.
	m.Preview, cmd = m.Preview.Update(msg)
	return m, cmd
}

// toggleAll selects every visible changed file, or clears them when all are
// already selected.
func (m *ReviewModel) toggleAll() {
	all := true
	for _, idx := range m.FilteredIndices {
		r := m.Report.Results[idx]
		if selectable(r) && !m.Selected[r.Path] {
			all = false
			break
		}
	}
	for _, idx := range m.FilteredIndices {
		r := m.Report.Results[idx]
		if selectable(r) {
			m.Selected[r.Path] = !all
		}
	}
}

func (m *ReviewModel) clearFilter() {
	m.InputMode = false
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")
	m.applyFilter()
	m.syncPreview()
}

func (m *ReviewModel) applyFilter() {
	term := strings.ToLower(strings.TrimSpace(m.InputBuffer.Value()))
	m.FilterActive = term != ""

	m.FilteredIndices = m.FilteredIndices[:0]
	for i, r := range m.Report.Results {
		if term == "" || strings.Contains(strings.ToLower(r.Path), term) {
			m.FilteredIndices = append(m.FilteredIndices, i)
		}
	}

	if m.SelectedIdx >= len(m.FilteredIndices) {
		m.SelectedIdx = max(0, len(m.FilteredIndices)-1)
	}
}

func (m *ReviewModel) syncPreview() {
	r, ok := m.current()
	switch {
	case !ok:
		m.Preview.SetContent("No files.")
	case r.Diff != "":
		m.Preview.SetContent(colorDiff(r.Diff))
	case r.Diagnostic != "":
		m.Preview.SetContent(r.Path + "\n\n" + r.Diagnostic)
	default:
		m.Preview.SetContent(r.Path + "\n\nNothing to change.")
	}
	m.Preview.GotoTop()
}
