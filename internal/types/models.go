package types

import "fmt"

// TranscriptSegment is one time-bounded, speaker-labelled utterance.
// Segments are produced by recognition + diarization and never mutated
// afterwards; consumers assume chronological order by start time.
type TranscriptSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// TS renders the segment interval as "start-end" with two decimals.
func (s TranscriptSegment) TS() string {
	return fmt.Sprintf("%.2f-%.2f", s.Start, s.End)
}

// Display renders the canonical transcript line: "[start-end] speaker: text".
func (s TranscriptSegment) Display() string {
	return fmt.Sprintf("[%s] %s: %s", s.TS(), s.Speaker, s.Text)
}

// TranscriptResult is what a recognizer returns for one audio file.
type TranscriptResult struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language"`
}

// ChecklistItem is one rubric checklist entry with its evidence quote.
type ChecklistItem struct {
	ID       string  `json:"id"`
	Passed   bool    `json:"passed"`
	Score    float64 `json:"score"`
	Max      float64 `json:"max"`
	Reason   string  `json:"reason"`
	Evidence string  `json:"evidence"`
	TS       string  `json:"ts"`
}

// Highlight is a notable quote surfaced by the rubric oracle.
type Highlight struct {
	Type  string `json:"type"`
	Quote string `json:"quote"`
	TS    string `json:"ts"`
}

// RubricResult holds the oracle's structured judgement for one call.
// Partial marks the degraded zero fallback produced when the oracle call
// failed; Error then carries the captured diagnostic.
type RubricResult struct {
	Empathy    float64         `json:"empathy"`
	Compliance float64         `json:"compliance"`
	Structure  float64         `json:"structure"`
	Checklist  []ChecklistItem `json:"checklist"`
	Highlights []Highlight     `json:"highlights"`
	Partial    bool            `json:"partial,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ScoreCard is the rubric portion of an aggregated report.
type ScoreCard struct {
	Empathy    float64         `json:"empathy"`
	Compliance float64         `json:"compliance"`
	Structure  float64         `json:"structure"`
	Checklist  []ChecklistItem `json:"checklist"`
	Highlights []Highlight     `json:"highlights"`
}

// OperationalMetrics are deterministic statistics derived from segment
// timings alone, available even when the rubric oracle is down.
type OperationalMetrics struct {
	SilencePct    float64            `json:"silencePct"`
	OverlapPct    float64            `json:"overlapPct"`
	SpeechRateWpm map[string]float64 `json:"speechRateWpm"`
	Interruptions map[string]int     `json:"interruptions"`
}

// AggregatedReport is the single merged record for one call. Exactly one
// exists per call id; a rerun mints a new id and a new report.
type AggregatedReport struct {
	CallID      string             `json:"callId"`
	Language    string             `json:"language"`
	DurationSec float64            `json:"durationSec"`
	Scores      ScoreCard          `json:"scores"`
	Operational OperationalMetrics `json:"operational"`
}
