// Package artifacts persists the per-call output files: transcript text,
// the canonical JSON report, a self-contained HTML report and an xlsx
// workbook. All writes land under <root>/<callId> and are whole-file
// replacements.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"call-audit-go/internal/types"
)

const (
	TranscriptName = "transcript.txt"
	JSONName       = "report.json"
	HTMLName       = "report.html"
	WorkbookName   = "report.xlsx"
)

// ReportDoc carries everything the human-readable renderers need.
type ReportDoc struct {
	CallID      string
	Language    string
	DurationSec float64
	Scores      types.ScoreCard
	Operational types.OperationalMetrics
	Segments    []types.TranscriptSegment
}

// Writer persists artifacts for one call.
type Writer struct {
	baseDir string
}

// NewWriter returns a writer rooted at <root>/<callID>.
func NewWriter(root, callID string) *Writer {
	return &Writer{baseDir: filepath.Join(root, callID)}
}

// Path resolves an artifact filename inside the call directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.baseDir, name)
}

// WriteTranscript writes the plain-text transcript and returns its path.
func (w *Writer) WriteTranscript(text string) (string, error) {
	return w.write(TranscriptName, []byte(text))
}

// WriteJSON serializes payload as the canonical report document: two-space
// indentation, UTF-8 with non-ASCII characters preserved unescaped so
// non-Latin transcript text round-trips legibly.
func (w *Writer) WriteJSON(payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encode report json: %w", err)
	}
	return w.write(JSONName, buf.Bytes())
}

// WriteHTML renders and writes the static HTML report.
func (w *Writer) WriteHTML(doc ReportDoc) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return w.write(HTMLName, buf.Bytes())
}

func (w *Writer) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
