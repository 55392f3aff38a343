package export

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"library-events/internal/domain/entity"
	"library-events/internal/observability/metrics"
)

// uidDomain suffixes every generated event UID so identifiers stay
// globally unique across calendar clients.
const uidDomain = "library-events"

// defaultEventDuration is assumed when a source publishes a start time
// but no end time.
const defaultEventDuration = time.Hour

// EventUID derives a stable calendar UID from the fields that identify
// an occurrence. The same record always yields the same UID, so
// re-importing a regenerated file updates events instead of
// duplicating them.
func EventUID(rec *entity.EventRecord) string {
	sum := md5.Sum([]byte(strings.Join([]string{
		rec.Library,
		rec.Title,
		rec.Date.String(),
		rec.TimeRaw,
		rec.Location,
	}, "|")))
	return hex.EncodeToString(sum[:]) + "@" + uidDomain
}

// ICS renders records as an iCalendar document in the given timezone.
// Records without a parsable date cannot be placed on a calendar and
// are skipped; entries with an unknown or all-day time become all-day
// events.
func ICS(records []*entity.EventRecord, name string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//" + uidDomain + "//EN")
	if name != "" {
		cal.SetXWRCalName(name)
	}

	now := time.Now().In(loc)
	for _, rec := range records {
		if !rec.Date.Known {
			continue
		}

		ev := cal.AddEvent(EventUID(rec))
		ev.SetDtStampTime(now)
		ev.SetSummary(rec.Title)
		if rec.Location != "" {
			ev.SetLocation(rec.Location)
		}
		if desc := eventDescription(rec); desc != "" {
			ev.SetDescription(desc)
		}
		if rec.HasLink() {
			ev.SetURL(rec.Link)
		}

		day := rec.Date.Time
		if rec.Time.Kind == entity.TimeAt {
			h, m := rec.Time.Clock()
			start := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
			ev.SetStartAt(start)
			ev.SetEndAt(eventEnd(rec, start, loc))
		} else {
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		}
	}

	metrics.RecordExport("ics")
	return cal.Serialize()
}

// eventEnd picks the end timestamp: the parsed range end when the
// source published one, otherwise one hour after the start. An end
// that lands at or before the start is treated as absent.
func eventEnd(rec *entity.EventRecord, start time.Time, loc *time.Location) time.Time {
	if rec.EndTime.Kind == entity.TimeAt {
		h, m := rec.EndTime.Clock()
		end := time.Date(start.Year(), start.Month(), start.Day(), h, m, 0, 0, loc)
		if end.After(start) {
			return end
		}
	}
	return start.Add(defaultEventDuration)
}

// eventDescription assembles the calendar body from the audience tags,
// the source description and the event link.
func eventDescription(rec *entity.EventRecord) string {
	var parts []string
	if len(rec.Audience) > 0 {
		parts = append(parts, "Age Group: "+strings.Join(rec.Audience, ", "))
	}
	if rec.Description != "" && rec.Description != entity.DescriptionNotFound {
		parts = append(parts, rec.Description)
	}
	if rec.HasLink() {
		parts = append(parts, fmt.Sprintf("More Info: %s", rec.Link))
	}
	return strings.Join(parts, "\n\n")
}
