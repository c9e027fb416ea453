package rewrite

import (
	"strings"

	"routemend/internal/model"
)

// Gate classifies file content. The marker check runs first, so a file that
// still carries legacy calls next to the collaborator import is left alone.
type Gate struct {
	Marker string // Substring identifying the collaborator import
	Legacy string // Legacy response-constructor token
}

// Classify returns the gate decision for content.
func (g Gate) Classify(content string) model.Classification {
	switch {
	case strings.Contains(content, g.Marker):
		return model.AlreadyIntegrated
	case !strings.Contains(content, g.Legacy):
		return model.NotApplicable
	default:
		return model.NeedsIntegration
	}
}
