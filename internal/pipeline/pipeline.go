// Package pipeline sequences one call audit end to end: ingest, recognize,
// diarize, score, persist. Each run is a strictly linear chain of blocking
// stages; the only branch is the rubric success/degraded split.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"call-audit-go/internal/artifacts"
	"call-audit-go/internal/asr"
	"call-audit-go/internal/config"
	"call-audit-go/internal/diarize"
	"call-audit-go/internal/ingest"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/rubric"
	"call-audit-go/internal/scoring"
	"call-audit-go/internal/telemetry"
	"call-audit-go/internal/types"
)

// SegmentPayload is the wire view of one transcript line.
type SegmentPayload struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	TS      string  `json:"ts"`
}

// ArtifactRef points at one persisted file, with a download URL when the
// file lives under the served artifacts root.
type ArtifactRef struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// Artifacts lists every file written for one call. Audio is the staged
// input recording; callers see it on the result but it stays out of the
// report.json contract.
type Artifacts struct {
	JSON       ArtifactRef  `json:"json"`
	HTML       ArtifactRef  `json:"html"`
	Transcript ArtifactRef  `json:"transcript"`
	Workbook   *ArtifactRef `json:"xlsx,omitempty"`
	Audio      ArtifactRef  `json:"-"`
}

// TranscriptBlock carries the full rendered transcript plus its line view.
type TranscriptBlock struct {
	Text  string           `json:"text"`
	Lines []SegmentPayload `json:"lines"`
}

// ResponsePayload is the externally visible report document, persisted
// verbatim as report.json and returned from the analyze endpoint.
type ResponsePayload struct {
	CallID      string                   `json:"callId"`
	Consent     bool                     `json:"consent"`
	Language    string                   `json:"language"`
	DurationSec float64                  `json:"durationSec"`
	Scores      types.ScoreCard          `json:"scores"`
	Operational types.OperationalMetrics `json:"operational"`
	Segments    []SegmentPayload         `json:"segments"`
	Transcript  TranscriptBlock          `json:"transcript"`
	LLMRaw      map[string]any           `json:"llmRaw"`
	Artifacts   Artifacts                `json:"artifacts"`
}

// PipelineResult is the top-level return value of one run, read-only once
// built.
type PipelineResult struct {
	CallID    string
	Consent   bool
	Degraded  bool
	Report    types.AggregatedReport
	LLMRaw    map[string]any
	Lines     []SegmentPayload
	Artifacts Artifacts
	Payload   ResponsePayload
}

// Service owns one pipeline configuration. Runs are independent; services
// with different configs can execute concurrently.
type Service struct {
	cfg        config.Config
	log        *logger.Logger
	recognizer asr.Recognizer
	evaluator  *rubric.Evaluator
}

func NewService(cfg config.Config, log *logger.Logger, recognizer asr.Recognizer, evaluator *rubric.Evaluator) *Service {
	return &Service{cfg: cfg, log: log, recognizer: recognizer, evaluator: evaluator}
}

// Run executes the full audit for one recording and persists its artifacts
// under a fresh call-scoped directory. outputDir overrides the configured
// artifacts root when non-empty. Input and write failures are fatal; a
// failed oracle call only degrades the rubric portion of the report.
func (s *Service) Run(ctx context.Context, audioPath, outputDir string, consent bool) (*PipelineResult, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	callID := ingest.NewCallID()
	log := s.log.WithCall(callID)
	log.WithField("audio", audioPath).Info("pipeline started")

	root := s.cfg.ArtifactsDir
	if outputDir != "" {
		root = outputDir
	}
	baseDir := filepath.Join(root, callID)

	normalized, durationSec, err := ingest.Normalize(audioPath, filepath.Join(baseDir, "input"))
	if err != nil {
		return nil, fmt.Errorf("audio normalization: %w", err)
	}

	transcriptResult, err := s.recognizer.Transcribe(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	segments := diarize.AssignRoles(transcriptResult.Segments)
	transcriptText := rubric.FormatTranscript(segments)

	evalCtx, cancel := context.WithTimeout(ctx, s.cfg.MaxRuntime)
	outcome := s.evaluator.Evaluate(evalCtx, transcriptText)
	cancel()
	if outcome.Degraded {
		log.WithField("reason", outcome.Reason).Warn("rubric evaluation degraded")
		telemetry.RecordRubricFailure()
	}

	report := scoring.BuildReport(callID, transcriptResult.Language, durationSec, outcome.Result, segments)

	writer := artifacts.NewWriter(root, callID)
	transcriptPath, err := writer.WriteTranscript(transcriptText)
	if err != nil {
		return nil, err
	}

	doc := artifacts.ReportDoc{
		CallID:      callID,
		Language:    report.Language,
		DurationSec: report.DurationSec,
		Scores:      report.Scores,
		Operational: report.Operational,
		Segments:    segments,
	}
	htmlPath, err := writer.WriteHTML(doc)
	if err != nil {
		return nil, err
	}
	workbookPath, err := writer.WriteWorkbook(doc)
	if err != nil {
		return nil, err
	}

	jsonPath := writer.Path(artifacts.JSONName)
	refs := Artifacts{
		JSON:       artifactRef(root, jsonPath),
		HTML:       artifactRef(root, htmlPath),
		Transcript: artifactRef(root, transcriptPath),
		Audio:      ArtifactRef{Path: normalized},
	}
	workbookRef := artifactRef(root, workbookPath)
	refs.Workbook = &workbookRef

	lines := make([]SegmentPayload, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, SegmentPayload{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
			Text:    seg.Text,
			TS:      seg.TS(),
		})
	}

	payload := ResponsePayload{
		CallID:      callID,
		Consent:     consent,
		Language:    report.Language,
		DurationSec: report.DurationSec,
		Scores:      report.Scores,
		Operational: report.Operational,
		Segments:    lines,
		Transcript:  TranscriptBlock{Text: transcriptText, Lines: lines},
		LLMRaw:      outcome.Raw,
		Artifacts:   refs,
	}

	if _, err := writer.WriteJSON(payload); err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"json": jsonPath,
		"html": htmlPath,
	}).Info("pipeline complete")

	return &PipelineResult{
		CallID:    callID,
		Consent:   consent,
		Degraded:  outcome.Degraded,
		Report:    report,
		LLMRaw:    outcome.Raw,
		Lines:     lines,
		Artifacts: refs,
		Payload:   payload,
	}, nil
}

// artifactRef derives the download URL for a file under the artifacts
// root; files outside it keep only their path.
func artifactRef(root, path string) ArtifactRef {
	ref := ArtifactRef{Path: path}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ref
	}
	ref.URL = "/artifacts/" + filepath.ToSlash(rel)
	return ref
}
