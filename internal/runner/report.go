package runner

import (
	"time"

	"routemend/internal/model"
)

// Report is the outcome of one run.
type Report struct {
	RunID        string            `json:"run_id"`
	Stage        string            `json:"stage"`
	Mode         model.Mode        `json:"mode"`
	RulesVersion string            `json:"rules_version"`
	Root         string            `json:"root"`
	Started      time.Time         `json:"started"`
	Duration     time.Duration     `json:"duration"`
	Results      []model.RunResult `json:"results"` // Discovery order
	Summary      model.RunSummary  `json:"summary"`
}

// Changed lists the paths that were rewritten, or in dry-run would be.
func (r Report) Changed() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Status == model.StatusOK && res.Changed {
			paths = append(paths, res.Path)
		}
	}
	return paths
}

// Result returns the result for path.
func (r Report) Result(path string) (model.RunResult, bool) {
	for _, res := range r.Results {
		if res.Path == path {
			return res, true
		}
	}
	return model.RunResult{}, false
}
