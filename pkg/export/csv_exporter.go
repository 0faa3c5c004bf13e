package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/smartbuddy/matching-api/internal/dto"
)

// CSVExporter renders a group schedule as a CSV session table.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the schedule, one row per committed
// session.
func (e *CSVExporter) Render(resp *dto.GroupScheduleResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("csv export requires a schedule")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(scheduleHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range scheduleRows(resp) {
		record := []string{
			row.Day,
			row.Time,
			row.PartnerA,
			row.PartnerB,
			fmt.Sprintf("%.1f", row.DurationHours),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
