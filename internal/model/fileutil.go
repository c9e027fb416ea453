package model

import (
	"fmt"
	"strings"
)

// LineContext is a line of source with up to two lines on either side.
type LineContext struct {
	Before     []string // Up to two lines before the target, in order
	Target     string   // The target line
	After      []string // Up to two lines after the target, in order
	LineNumber int      // 1-based line number of the target
	ErrorMsg   string   // Set when the line is out of range
}

// GetLineContext returns the target line of content with surrounding context.
func GetLineContext(content string, lineNumber int) LineContext {
	result := LineContext{
		LineNumber: lineNumber,
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if lineNumber < 1 || lineNumber > len(lines) {
		result.ErrorMsg = fmt.Sprintf("Line %d out of range (content has %d lines)", lineNumber, len(lines))
		return result
	}

	idx := lineNumber - 1
	result.Target = lines[idx]

	start := idx - 2
	if start < 0 {
		start = 0
	}
	result.Before = append(result.Before, lines[start:idx]...)

	end := idx + 3
	if end > len(lines) {
		end = len(lines)
	}
	result.After = append(result.After, lines[idx+1:end]...)

	return result
}

// String renders the context with line numbers, marking the target with '>'.
func (c LineContext) String() string {
	if c.ErrorMsg != "" {
		return c.ErrorMsg
	}
	var b strings.Builder
	first := c.LineNumber - len(c.Before)
	for i, l := range c.Before {
		fmt.Fprintf(&b, "  %4d | %s\n", first+i, l)
	}
	fmt.Fprintf(&b, "> %4d | %s\n", c.LineNumber, c.Target)
	for i, l := range c.After {
		fmt.Fprintf(&b, "  %4d | %s\n", c.LineNumber+1+i, l)
	}
	return b.String()
}
