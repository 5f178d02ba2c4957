package rubric

import (
	"call-audit-go/internal/types"
)

// Outcome is the tagged result of one oracle invocation. A failed call
// never surfaces as a Go error: it comes back with Degraded set, zeroed
// scores and the captured reason, so a single external outage degrades the
// quality signal instead of aborting the audit.
type Outcome struct {
	Result   types.RubricResult
	Raw      map[string]any
	Degraded bool
	Reason   string
}

// DegradedOutcome synthesizes the zero fallback for a failed oracle call.
func DegradedOutcome(reason string) Outcome {
	return Outcome{
		Result: types.RubricResult{
			Checklist:  []types.ChecklistItem{},
			Highlights: []types.Highlight{},
			Partial:    true,
			Error:      reason,
		},
		Raw: map[string]any{
			"empathy":    0.0,
			"compliance": 0.0,
			"structure":  0.0,
			"checklist":  []any{},
			"highlights": []any{},
			"partial":    true,
			"error":      reason,
		},
		Degraded: true,
		Reason:   reason,
	}
}
