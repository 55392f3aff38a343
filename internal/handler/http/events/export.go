package events

import (
	"fmt"
	"net/http"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/handler/http/respond"
	"library-events/internal/usecase/export"
)

const calendarName = "Library Events"

// handleExportICS serves the filtered set as an iCalendar feed. The
// same query parameters as the listing apply, so clients can subscribe
// to a narrowed calendar.
func (h *Handler) handleExportICS(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filteredRecords(w, r)
	if !ok {
		return
	}

	body := export.ICS(records, calendarName, h.loc)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="library_events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filteredRecords(w, r)
	if !ok {
		return
	}

	filename := export.CSVFilename(time.Now().In(h.loc))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_ = export.WriteCSV(w, records)
}

// handleExportText serves the filtered set as a paginated plain-text
// report, the printable counterpart to the calendar and CSV exports.
func (h *Handler) handleExportText(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filteredRecords(w, r)
	if !ok {
		return
	}

	report := export.BuildReport(records, calendarName, time.Now().In(h.loc), 0)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="library_events.txt"`)
	w.WriteHeader(http.StatusOK)
	_ = export.RenderText(w, report)
}

func (h *Handler) filteredRecords(w http.ResponseWriter, r *http.Request) ([]*entity.EventRecord, bool) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return nil, false
	}

	matches := h.query.Filter(r.Context(), h.store.Records(), criteria)
	records := make([]*entity.EventRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, m.Record)
	}
	return records, true
}
