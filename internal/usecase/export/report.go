package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/observability/metrics"
)

// defaultEventsPerPage bounds how many event lines land on one report
// page before a new page starts. A day section never splits mid-library.
const defaultEventsPerPage = 25

// Report is the printable form of an event set: day sections spread
// over numbered pages.
type Report struct {
	Title       string
	GeneratedAt time.Time
	TotalEvents int
	Pages       []ReportPage
}

// ReportPage holds the day sections that fit on one page.
type ReportPage struct {
	Number   int
	Sections []DayGroup
}

// BuildReport paginates grouped records into a report. eventsPerPage
// values below one fall back to the default.
func BuildReport(records []*entity.EventRecord, title string, generatedAt time.Time, eventsPerPage int) *Report {
	if eventsPerPage < 1 {
		eventsPerPage = defaultEventsPerPage
	}

	report := &Report{
		Title:       title,
		GeneratedAt: generatedAt,
		TotalEvents: len(records),
	}

	var (
		page  ReportPage
		count int
	)
	flush := func() {
		if len(page.Sections) == 0 {
			return
		}
		page.Number = len(report.Pages) + 1
		report.Pages = append(report.Pages, page)
		page = ReportPage{}
		count = 0
	}

	for _, day := range Group(records) {
		section := DayGroup{Date: day.Date, Label: day.Label}
		for _, lib := range day.Libraries {
			if count+len(lib.Events) > eventsPerPage && count > 0 {
				if len(section.Libraries) > 0 {
					page.Sections = append(page.Sections, section)
					section = DayGroup{Date: day.Date, Label: day.Label}
				}
				flush()
			}
			section.Libraries = append(section.Libraries, lib)
			count += len(lib.Events)
		}
		if len(section.Libraries) > 0 {
			page.Sections = append(page.Sections, section)
		}
	}
	flush()

	metrics.RecordExport("report")
	return report
}

// RenderText writes the report as plain text, one page per form-feed
// separated block.
func RenderText(w io.Writer, report *Report) error {
	var b strings.Builder

	b.WriteString(report.Title + "\n")
	fmt.Fprintf(&b, "Generated %s\n", report.GeneratedAt.Format("January 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "%d events\n", report.TotalEvents)

	for pi, page := range report.Pages {
		if pi > 0 {
			b.WriteString("\f")
		}
		fmt.Fprintf(&b, "\n--- Page %d of %d ---\n", page.Number, len(report.Pages))
		for _, section := range page.Sections {
			b.WriteString("\n" + section.Label + "\n")
			b.WriteString(strings.Repeat("=", len(section.Label)) + "\n")
			for _, lib := range section.Libraries {
				b.WriteString("\n  " + lib.Name + "\n")
				for _, ev := range lib.Events {
					fmt.Fprintf(&b, "    %s\n", ev.Title)
					fmt.Fprintf(&b, "      %s\n", eventMetaLine(ev))
				}
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// eventMetaLine is the one-line summary under each report entry:
// time, location and audience separated by pipes.
func eventMetaLine(ev *entity.EventRecord) string {
	timeText := ev.TimeRaw
	if timeText == "" {
		timeText = ev.Time.String()
	}
	parts := []string{timeText}
	if ev.Location != "" && ev.Location != entity.DescriptionNotFound {
		parts = append(parts, ev.Location)
	}
	if len(ev.Audience) > 0 {
		parts = append(parts, "Age: "+strings.Join(ev.Audience, ", "))
	}
	return strings.Join(parts, " | ")
}
