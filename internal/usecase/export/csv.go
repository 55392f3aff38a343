package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/observability/metrics"
)

// CSVHeader lists the tabular columns in output order.
var CSVHeader = []string{
	"Source ID",
	"Library",
	"Title",
	"Date",
	"Time",
	"Location",
	"Age Group",
	"Program Type",
	"Description",
	"Link",
}

// CSVFilename returns the date-stamped download name for a run,
// e.g. "all_library_events_2025-12-10.csv".
func CSVFilename(runDate time.Time) string {
	return fmt.Sprintf("all_library_events_%s.csv", runDate.Format("2006-01-02"))
}

// WriteCSV writes records as CSV with every field double-quoted,
// including the header row. Spreadsheet imports then never misread a
// bare comma or a leading zero.
func WriteCSV(w io.Writer, records []*entity.EventRecord) error {
	if err := writeQuotedRow(w, CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := writeQuotedRow(w, csvRow(rec)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	metrics.RecordExport("csv")
	return nil
}

func csvRow(rec *entity.EventRecord) []string {
	timeText := rec.TimeRaw
	if timeText == "" {
		timeText = rec.Time.String()
	}
	return []string{
		rec.SourceID,
		rec.Library,
		rec.Title,
		rec.Date.String(),
		timeText,
		rec.Location,
		strings.Join(rec.Audience, ", "),
		rec.Category,
		rec.Description,
		rec.Link,
	}
}

// writeQuotedRow emits one CRLF-terminated row with each field quoted
// and embedded quotes doubled.
func writeQuotedRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}
