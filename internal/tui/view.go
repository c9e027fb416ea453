package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"routemend/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	normalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	delStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))

	borderColor = lipgloss.Color("63")
	activeColor = lipgloss.Color("205")
)

// View renders the screen.
func (m ReviewModel) View() string {
	width := m.WindowSize.Width
	height := m.WindowSize.Height
	if width == 0 {
		width, height = 100, 30
	}

	netWidth := max(40, width-6)
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth
	interiorHeight := max(4, height-8)

	// Left panel: files
	var left strings.Builder
	left.WriteString(titleStyle.Render(fmt.Sprintf("Files (%d selected)", len(m.SelectedPaths()))))
	left.WriteString("\n\n")

	visible := max(1, interiorHeight-2)
	start := 0
	if len(m.FilteredIndices) > visible && m.SelectedIdx >= visible/2 {
		start = min(m.SelectedIdx-visible/2, len(m.FilteredIndices)-visible)
	}
	end := min(len(m.FilteredIndices), start+visible)

	for i := start; i < end; i++ {
		r := m.Report.Results[m.FilteredIndices[i]]
		left.WriteString(m.renderRow(r, i == m.SelectedIdx, leftWidth-2))
		left.WriteString("\n")
	}
	if len(m.FilteredIndices) == 0 {
		left.WriteString(dimStyle.Render("No matching files."))
	}

	leftBox := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(activeColor).
		Render(strings.TrimSuffix(left.String(), "\n"))

	rightBox := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(m.Preview.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.footer())
}

func (m ReviewModel) header() string {
	s := m.Report.Summary
	return titleStyle.Render("routemend review") + dimStyle.Render(fmt.Sprintf(
		"  %d would change · %d skipped · %d failed · rules %s",
		s.Changed, s.Skipped, s.Failed, m.Report.RulesVersion))
}

func (m ReviewModel) footer() string {
	if m.InputMode {
		return "Filter: " + m.InputBuffer.View()
	}
	var parts []string
	for _, b := range []struct{ k, d string }{
		{keys.Up.Help().Key + " " + keys.Down.Help().Key, "move"},
		{keys.Toggle.Help().Key, keys.Toggle.Help().Desc},
		{keys.ToggleAll.Help().Key, keys.ToggleAll.Help().Desc},
		{keys.Filter.Help().Key, keys.Filter.Help().Desc},
		{keys.Apply.Help().Key, keys.Apply.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	} {
		parts = append(parts, b.k+" "+b.d)
	}
	return dimStyle.Render(strings.Join(parts, " • "))
}

func (m ReviewModel) renderRow(r model.RunResult, cursor bool, width int) string {
	mark := " "
	if m.Selected[r.Path] {
		mark = model.IconSelected
	}
	line := fmt.Sprintf("%s %s %s", mark, model.IconFor(r), r.Path)
	if r.Status == model.StatusSkipped {
		line += " (" + r.Diagnostic + ")"
	}
	if width > 5 && lipgloss.Width(line) > width {
		line = string([]rune(line)[:width-3]) + "..."
	}

	switch {
	case cursor:
		return cursorStyle.Render(line)
	case r.Status == model.StatusFailed:
		return failStyle.Render(line)
	case !selectable(r):
		return dimStyle.Render(line)
	}
	return normalStyle.Render(line)
}

// colorDiff styles a unified diff line by line.
func colorDiff(d string) string {
	lines := strings.Split(strings.TrimSuffix(d, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = dimStyle.Render(l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = hunkStyle.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = addStyle.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = delStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
