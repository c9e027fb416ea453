package model

// Status icons shared by the text report and the review UI.
// Single-width characters keep columns aligned in terminals.
const (
	IconChanged   = "±" // Rewritten (or would be)
	IconUnchanged = "=" // Processed, nothing to do
	IconSkipped   = "·" // Gate skipped the file
	IconFailed    = "✗" // Read, verify, or write failed
	IconSelected  = "◆" // Marked for apply in review
)

// IconFor picks the icon for a result.
func IconFor(r RunResult) string {
	switch r.Status {
	case StatusFailed:
		return IconFailed
	case StatusSkipped:
		return IconSkipped
	}
	if r.Changed {
		return IconChanged
	}
	return IconUnchanged
}
