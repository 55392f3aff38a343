package normalize

import (
	"strings"
	"time"

	"library-events/internal/domain/entity"
)

// timeLayouts is tried against compacted (space-free, upper-cased) time
// text. Missing minutes are tolerated ("10 AM" parses as 10:00).
var timeLayouts = []string{
	"3:04PM",
	"3PM",
	"15:04",
}

// rangeSeparators split a time range into start and end. Sources use
// both the plain hyphen and the en-dash.
var rangeSeparators = []string{"–", "-"}

// Time parses raw time text into a start and an optional end time.
// Input may be a single time, a dash- or en-dash-separated range, an
// "All Day" marker, or a combined "date @ time" string whose time half
// is taken. Unparsable input yields the Unknown kind, never an error.
func Time(text string) (start, end entity.TimeOfDay) {
	s := strings.TrimSpace(text)
	if s == "" {
		return entity.TimeOfDay{}, entity.TimeOfDay{}
	}

	// Combined strings put the time after the last "@".
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ToLower(strings.TrimSpace(s))

	if strings.Contains(s, "all day") {
		return entity.TimeOfDay{Kind: entity.TimeAllDay}, entity.TimeOfDay{}
	}

	startText, endText := splitRange(s)
	start = parseClock(startText)
	if endText != "" {
		end = parseClock(endText)
	}
	return start, end
}

// splitRange splits "10:00 am - 11:00 am" into its halves. Only the
// first separator counts; anything after a second dash stays with the
// end text and simply fails to parse.
func splitRange(s string) (string, string) {
	for _, sep := range rangeSeparators {
		if i := strings.Index(s, sep); i >= 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	return s, ""
}

// parseClock parses a single time expression into a TimeOfDay.
func parseClock(s string) entity.TimeOfDay {
	compact := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if compact == "" {
		return entity.TimeOfDay{}
	}
	// Tolerate a trailing period in "a.m."-style suffixes.
	compact = strings.ReplaceAll(compact, ".", "")

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, compact); err == nil {
			return entity.TimeAtMinutes(t.Hour()*60 + t.Minute())
		}
	}
	return entity.TimeOfDay{}
}
