package scoring

import (
	"call-audit-go/internal/types"
)

// BuildReport merges the rubric judgement with freshly computed operational
// metrics into the single report record for one call. Pure merge, no
// failure modes: nil rubric sequences become empty so downstream renderers
// never see nulls.
func BuildReport(callID, language string, durationSec float64, rubric types.RubricResult, segments []types.TranscriptSegment) types.AggregatedReport {
	checklist := rubric.Checklist
	if checklist == nil {
		checklist = []types.ChecklistItem{}
	}
	highlights := rubric.Highlights
	if highlights == nil {
		highlights = []types.Highlight{}
	}

	return types.AggregatedReport{
		CallID:      callID,
		Language:    language,
		DurationSec: durationSec,
		Scores: types.ScoreCard{
			Empathy:    rubric.Empathy,
			Compliance: rubric.Compliance,
			Structure:  rubric.Structure,
			Checklist:  checklist,
			Highlights: highlights,
		},
		Operational: ComputeOperational(segments),
	}
}
