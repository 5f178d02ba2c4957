package artifacts

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook exports the report as a spreadsheet with Summary,
// Checklist and Transcript sheets, for reviewers who live in Excel.
func (w *Writer) WriteWorkbook(doc ReportDoc) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", fmt.Errorf("workbook summary sheet: %w", err)
	}
	summary := [][]any{
		{"Call ID", doc.CallID},
		{"Language", doc.Language},
		{"Duration (sec)", doc.DurationSec},
		{"Empathy", doc.Scores.Empathy},
		{"Compliance", doc.Scores.Compliance},
		{"Structure", doc.Scores.Structure},
		{"Silence %", doc.Operational.SilencePct},
		{"Overlap %", doc.Operational.OverlapPct},
	}
	for role, rate := range doc.Operational.SpeechRateWpm {
		summary = append(summary, []any{"Speech rate wpm: " + role, rate})
	}
	for key, count := range doc.Operational.Interruptions {
		summary = append(summary, []any{"Interruptions: " + key, count})
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Checklist"); err != nil {
		return "", fmt.Errorf("workbook checklist sheet: %w", err)
	}
	checklist := [][]any{{"ID", "Passed", "Score", "Max", "Reason", "Evidence", "TS"}}
	for _, item := range doc.Scores.Checklist {
		checklist = append(checklist, []any{item.ID, item.Passed, item.Score, item.Max, item.Reason, item.Evidence, item.TS})
	}
	if err := writeRows(f, "Checklist", checklist); err != nil {
		return "", err
	}

	if _, err := f.NewSheet("Transcript"); err != nil {
		return "", fmt.Errorf("workbook transcript sheet: %w", err)
	}
	transcript := [][]any{{"TS", "Speaker", "Text"}}
	for _, seg := range doc.Segments {
		transcript = append(transcript, []any{seg.TS(), seg.Speaker, seg.Text})
	}
	if err := writeRows(f, "Transcript", transcript); err != nil {
		return "", err
	}

	path := w.Path(WorkbookName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("workbook cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("workbook cell write: %w", err)
			}
		}
	}
	return nil
}
