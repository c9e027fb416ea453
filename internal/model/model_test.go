package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummaryAdd(t *testing.T) {
	var s RunSummary
	s.Add(RunResult{Status: StatusOK, Changed: true})
	s.Add(RunResult{Status: StatusOK})
	s.Add(RunResult{Status: StatusSkipped})
	s.Add(RunResult{Status: StatusFailed})

	assert.Equal(t, RunSummary{OK: 2, Skipped: 1, Failed: 1, Changed: 1}, s)
	assert.Equal(t, 4, s.Total())
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, IconFailed, IconFor(RunResult{Status: StatusFailed}))
	assert.Equal(t, IconSkipped, IconFor(RunResult{Status: StatusSkipped}))
	assert.Equal(t, IconChanged, IconFor(RunResult{Status: StatusOK, Changed: true}))
	assert.Equal(t, IconUnchanged, IconFor(RunResult{Status: StatusOK}))
}

func TestGetLineContext(t *testing.T) {
	content := "a\nb\nc\nd\ne\nf\n"

	ctx := GetLineContext(content, 3)
	assert.Equal(t, "c", ctx.Target)
	assert.Equal(t, []string{"a", "b"}, ctx.Before)
	assert.Equal(t, []string{"d", "e"}, ctx.After)
	assert.Empty(t, ctx.ErrorMsg)

	edge := GetLineContext(content, 1)
	assert.Empty(t, edge.Before)
	assert.Equal(t, []string{"b", "c"}, edge.After)

	last := GetLineContext(content, 6)
	assert.Equal(t, "f", last.Target)
	assert.Empty(t, last.After)

	bad := GetLineContext(content, 7)
	assert.Contains(t, bad.ErrorMsg, "out of range")
}

func TestLineContextString(t *testing.T) {
	out := GetLineContext("x\ny\nz", 2).String()
	assert.Equal(t, "     1 | x\n>    2 | y\n     3 | z\n", out)
}
