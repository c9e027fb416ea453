package model

// Version is the routemend release version.
const Version = "0.4.0"

// SourceFile is one route handler file as read from disk.
type SourceFile struct {
	Path    string // Path as discovered (relative to the working directory when possible)
	Content string // Raw content at read time
}

// Classification is the gate decision for a file's content.
type Classification string

const (
	AlreadyIntegrated Classification = "already-integrated"
	NotApplicable     Classification = "not-applicable"
	NeedsIntegration  Classification = "needs-integration"
)

// Status is the per-file outcome of a run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Mode selects whether a run persists its changes.
type Mode string

const (
	ModeApply  Mode = "apply"
	ModeDryRun Mode = "dry-run"
)

// RunResult records what happened to a single file.
type RunResult struct {
	Path           string         `json:"path"`
	Status         Status         `json:"status"`
	Classification Classification `json:"classification,omitempty"`
	Changed        bool           `json:"changed"`
	Diagnostic     string         `json:"diagnostic,omitempty"` // At most one message, set for skips and failures
	Rules          []string       `json:"rules,omitempty"`      // IDs of the rules that fired
	Diff           string         `json:"diff,omitempty"`       // Unified diff, dry-run with diffs only
}

// RunSummary aggregates a run's results.
type RunSummary struct {
	OK      int `json:"ok"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Changed int `json:"changed"`
}

// Add folds one result into the summary.
func (s *RunSummary) Add(r RunResult) {
	switch r.Status {
	case StatusOK:
		s.OK++
		if r.Changed {
			s.Changed++
		}
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Total is the number of files the summary covers.
func (s RunSummary) Total() int {
	return s.OK + s.Skipped + s.Failed
}
