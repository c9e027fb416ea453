// Package report prints run reports for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"routemend/internal/model"
	"routemend/internal/rewrite"
	"routemend/internal/runner"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // Amber
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // Green
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Grey
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Italic(true)
)

// Printer writes the text report.
type Printer struct {
	w        io.Writer
	color    bool
	Verbose  bool // Also list unchanged files
	ShowDiff bool // Print attached diffs under each changed file
}

// NewPrinter returns a Printer that styles output only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Line formats the per-file line for res, or "" when nothing is printed.
func (p *Printer) Line(mode model.Mode, res model.RunResult) string {
	switch res.Status {
	case model.StatusFailed:
		return p.style(failStyle, "[FAIL]") + " " + res.Path + ": " + res.Diagnostic
	case model.StatusSkipped:
		return p.style(skipStyle, "[SKIP]") + " " + res.Path + ": " + res.Diagnostic
	}
	if !res.Changed {
		if p.Verbose {
			return p.style(skipStyle, "[OK]") + " " + res.Path + ": unchanged"
		}
		return ""
	}
	tag := p.style(doneStyle, "[DONE]")
	if mode == model.ModeDryRun {
		tag = p.style(dryStyle, "[DRY]")
	}
	line := tag + " " + res.Path
	if p.Verbose && len(res.Rules) > 0 {
		line += " (" + strings.Join(res.Rules, ", ") + ")"
	}
	return line
}

// Text writes one line per file, the summary and, in dry-run, the paths that
// would change.
func (p *Printer) Text(rep runner.Report) error {
	var b strings.Builder
	for _, res := range rep.Results {
		line := p.Line(rep.Mode, res)
		if line == "" {
			continue
		}
		b.WriteString(line + "\n")
		if p.ShowDiff && res.Diff != "" {
			b.WriteString(res.Diff)
			if !strings.HasSuffix(res.Diff, "\n") {
				b.WriteString("\n")
			}
		}
	}

	s := rep.Summary
	b.WriteString("\n")
	b.WriteString(p.style(headerStyle, fmt.Sprintf("Summary (%s %s, rules %s)", rep.Stage, rep.Mode, rep.RulesVersion)) + "\n")
	fmt.Fprintf(&b, "  files:   %d\n", s.Total())
	fmt.Fprintf(&b, "  ok:      %d\n", s.OK)
	fmt.Fprintf(&b, "  skipped: %d\n", s.Skipped)
	fmt.Fprintf(&b, "  failed:  %d\n", s.Failed)
	fmt.Fprintf(&b, "  changed: %d\n", s.Changed)

	if rep.Mode == model.ModeDryRun {
		changed := rep.Changed()
		if len(changed) == 0 {
			b.WriteString("\nNo files would change.\n")
		} else {
			b.WriteString("\n" + p.style(headerStyle, "Would change:") + "\n")
			for _, path := range changed {
				b.WriteString("  " + path + "\n")
			}
			b.WriteString("\n" + p.style(hintStyle, "Run again without --dry-run to apply these changes.") + "\n")
		}
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, rep runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Rules writes the rule table.
func Rules(w io.Writer, imports rewrite.ImportRewriter, rules []rewrite.Rule) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CATEGORY", "MATCH", "REWRITE")
	t.Row(rewrite.ImportsRuleID, "imports", imports.Describe(), "")
	for _, r := range rules {
		t.Row(r.ID, string(r.Category), r.Template, r.Replacement)
	}
	_, err := fmt.Fprintf(w, "Rules version %s\n%s\n", rewrite.RulesVersion, t.String())
	return err
}
