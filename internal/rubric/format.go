package rubric

import (
	"strings"

	"call-audit-go/internal/types"
)

// FormatTranscript renders the segment sequence into the oracle's input
// contract: one "[start-end] speaker: text" line per segment, newline
// joined, in segment order. The rendering is stable byte for byte; tooling
// on the oracle side parses it back.
func FormatTranscript(segments []types.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, seg.Display())
	}
	return strings.Join(lines, "\n")
}
