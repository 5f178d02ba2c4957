package asr

import (
	"context"

	"call-audit-go/internal/logger"
	"call-audit-go/internal/types"
)

// Recognizer turns a normalized recording into a time-stamped transcript.
// Speaker labels are left empty here; diarization assigns roles afterwards.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string) (types.TranscriptResult, error)
}

// StubRecognizer keeps the interface stable while the real ASR backend is
// integrated. It returns a single placeholder segment.
type StubRecognizer struct {
	Language string
	log      *logger.Logger
}

func NewStubRecognizer(log *logger.Logger) *StubRecognizer {
	return &StubRecognizer{Language: "ru", log: log}
}

func (r *StubRecognizer) Transcribe(ctx context.Context, audioPath string) (types.TranscriptResult, error) {
	text := "[ASR stub] Replace with real transcription output."
	segments := []types.TranscriptSegment{
		{Start: 0.0, End: 5.0, Text: text},
	}
	r.log.WithFields(map[string]interface{}{
		"component": "asr",
		"audio":     audioPath,
		"segments":  len(segments),
	}).Info("transcription complete")
	return types.TranscriptResult{Text: text, Segments: segments, Language: r.Language}, nil
}
