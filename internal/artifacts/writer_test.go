package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-audit-go/internal/types"
)

func sampleDoc() ReportDoc {
	return ReportDoc{
		CallID:      "c_testcall",
		Language:    "ru",
		DurationSec: 7.0,
		Scores: types.ScoreCard{
			Empathy:    0.8,
			Compliance: 0.6,
			Structure:  0.9,
			Checklist: []types.ChecklistItem{
				{ID: "greeting", Passed: true, Score: 1, Max: 1, Reason: "greeted", Evidence: "Hello", TS: "0.00-2.00"},
			},
			Highlights: []types.Highlight{},
		},
		Operational: types.OperationalMetrics{
			SilencePct:    7.14,
			OverlapPct:    0,
			SpeechRateWpm: map[string]float64{"agent": 105, "customer": 40},
			Interruptions: map[string]int{"byAgent": 0, "byCustomer": 1},
		},
		Segments: []types.TranscriptSegment{
			{Start: 0.0, End: 2.0, Speaker: "agent", Text: "Hello"},
			{Start: 2.0, End: 4.5, Speaker: "customer", Text: "Hi there"},
		},
	}
}

func TestWriteTranscript(t *testing.T) {
	w := NewWriter(t.TempDir(), "c_testcall")

	path, err := w.WriteTranscript("[0.00-2.00] agent: Hello")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[0.00-2.00] agent: Hello", string(data))
	assert.Equal(t, TranscriptName, filepath.Base(path))
}

func TestWriteJSONPreservesUnicode(t *testing.T) {
	w := NewWriter(t.TempDir(), "c_testcall")

	path, err := w.WriteJSON(map[string]string{"text": "Привет, мир"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Привет, мир")
	assert.NotContains(t, string(data), `\u04`)
}

func TestWriteHTMLEscapesMarkup(t *testing.T) {
	doc := sampleDoc()
	doc.Scores.Checklist[0].Reason = `<script>alert("x")</script>`
	doc.Segments[0].Text = "<b>bold claim</b>"

	w := NewWriter(t.TempDir(), "c_testcall")
	path, err := w.WriteHTML(doc)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<b>bold claim</b>")
	assert.Contains(t, html, "c_testcall")
}

func TestWriteHTMLEmptySections(t *testing.T) {
	doc := sampleDoc()
	doc.Scores.Checklist = nil
	doc.Scores.Highlights = nil
	doc.Segments = nil

	w := NewWriter(t.TempDir(), "c_testcall")
	path, err := w.WriteHTML(doc)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No checklist items")
	assert.Contains(t, string(data), "No highlights")
	assert.Contains(t, string(data), "No transcript segments")
}

func TestWriteWorkbook(t *testing.T) {
	w := NewWriter(t.TempDir(), "c_testcall")

	path, err := w.WriteWorkbook(sampleDoc())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	callID, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "c_testcall", callID)

	id, err := f.GetCellValue("Checklist", "A2")
	require.NoError(t, err)
	assert.Equal(t, "greeting", id)

	speaker, err := f.GetCellValue("Transcript", "B2")
	require.NoError(t, err)
	assert.Equal(t, "agent", speaker)
}
