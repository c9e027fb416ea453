package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routemend/internal/model"
	"routemend/internal/runner"
)

func sampleReport() runner.Report {
	return runner.Report{
		Mode: model.ModeDryRun,
		Results: []model.RunResult{
			{Path: "api/orders/route.ts", Status: model.StatusOK, Changed: true, Diff: "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\n+new\n"},
			{Path: "api/health/route.ts", Status: model.StatusSkipped, Diagnostic: "not-applicable"},
			{Path: "api/users/route.ts", Status: model.StatusOK, Changed: true},
		},
	}
}

func press(t *testing.T, m ReviewModel, msgs ...tea.KeyMsg) (ReviewModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(ReviewModel)
		require.True(t, ok)
	}
	return m, cmd
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewReviewSelectsChangedFiles(t *testing.T) {
	m := NewReview(sampleReport())
	assert.Equal(t, []string{"api/orders/route.ts", "api/users/route.ts"}, m.SelectedPaths())
	assert.Equal(t, []int{0, 1, 2}, m.FilteredIndices)
}

func TestToggleSelection(t *testing.T) {
	m, _ := press(t, NewReview(sampleReport()), space)
	assert.Equal(t, []string{"api/users/route.ts"}, m.SelectedPaths())

	// Skipped files cannot be selected.
	m, _ = press(t, m, down, space)
	assert.Equal(t, []string{"api/users/route.ts"}, m.SelectedPaths())
}

func TestToggleAll(t *testing.T) {
	m, _ := press(t, NewReview(sampleReport()), runes("a"))
	assert.Empty(t, m.SelectedPaths(), "all selected, so a clears")

	m, _ = press(t, m, runes("a"))
	assert.Len(t, m.SelectedPaths(), 2)
}

func TestEnterConfirms(t *testing.T) {
	m, cmd := press(t, NewReview(sampleReport()), enter)
	assert.True(t, m.Confirmed)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestQuitDoesNotConfirm(t *testing.T) {
	m, cmd := press(t, NewReview(sampleReport()), runes("q"))
	assert.False(t, m.Confirmed)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCursorBounds(t *testing.T) {
	m, _ := press(t, NewReview(sampleReport()), down, down, down, down)
	assert.Equal(t, 2, m.SelectedIdx)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, runes("k"), runes("k"))
	assert.Equal(t, 0, m.SelectedIdx)
}

func TestFilter(t *testing.T) {
	m, _ := press(t, NewReview(sampleReport()), runes("/"))
	require.True(t, m.InputMode)

	m, _ = press(t, m, runes("users"), enter)
	assert.False(t, m.InputMode)
	assert.True(t, m.FilterActive)
	assert.Equal(t, []int{2}, m.FilteredIndices)
	assert.False(t, m.Confirmed, "enter in filter mode only closes the filter")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.FilterActive)
	assert.Len(t, m.FilteredIndices, 3)
}

func TestViewRendersFilesAndDiff(t *testing.T) {
	next, _ := NewReview(sampleReport()).Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	out := next.View()

	assert.Contains(t, out, "api/orders/route.ts")
	assert.Contains(t, out, "(not-applicable)")
	assert.Contains(t, out, "+new")
	assert.Contains(t, out, "enter apply selected")
}
