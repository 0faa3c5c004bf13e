package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/smartbuddy/matching-api/internal/dto"
)

// PDFExporter renders a group schedule as a printable session table with a
// summary footer.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document for the schedule: a title with the run id,
// one table row per session, and the aggregate statistics underneath.
func (e *PDFExporter) Render(resp *dto.GroupScheduleResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("pdf export requires a schedule")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "STUDY GROUP SCHEDULE", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Run %s", resp.ScheduleID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(scheduleHeaders))
	for _, header := range scheduleHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range scheduleRows(resp) {
		pdf.CellFormat(colWidth, 7, row.Day, "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidth, 7, row.Time, "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidth, 7, row.PartnerA, "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidth, 7, row.PartnerB, "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidth, 7, fmt.Sprintf("%.1f", row.DurationHours), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	stats := resp.Schedule.Statistics
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Sessions: %d    Study hours: %.1f    Days used: %d    Students: %d",
		stats.TotalSessions, stats.TotalStudyHours, stats.DaysWithSessions, resp.TotalStudents), "", 1, "", false, 0, "")
	if resp.ScheduleValid {
		pdf.CellFormat(0, 6, "All scheduling constraints satisfied.", "", 1, "", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, fmt.Sprintf("Constraint violations: %d", len(resp.ConstraintViolations)), "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
