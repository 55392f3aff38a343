// Package normalize converts the raw text fields source adapters emit
// into the canonical typed schema: calendar dates, times of day, and
// cleaned display text. Parsing never fails loudly; unparsable input
// yields the Unknown sentinels so one bad record cannot abort a run.
package normalize

import (
	"strings"
	"time"

	"library-events/internal/domain/entity"
)

// dateLayouts is the ordered list of formats tried against cleaned date
// text. First match wins, so more specific layouts come first.
var dateLayouts = []string{
	"Monday, January 2, 2006",
	"Monday January 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
}

// yearlessLayouts are tried last; the year is inferred from the clock.
var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"Monday, January 2",
}

// Date parses raw date text into a calendar date, using the current
// time for year inference on bare "Month Day" input.
func Date(text string) entity.Date {
	return DateAt(text, time.Now())
}

// DateAt is Date with an explicit clock. Bare "Month Day" input assumes
// the current year, rolling to the next year when the parsed month is
// earlier than the current month and the current month is in the last
// quarter of the year.
func DateAt(text string, now time.Time) entity.Date {
	s := PrepareDateText(text)
	if s == "" {
		return entity.UnknownDate()
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.DateOf(t)
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		year := now.Year()
		if t.Month() < now.Month() && now.Month() >= time.October {
			year++
		}
		return entity.NewDate(year, t.Month(), t.Day())
	}

	return entity.UnknownDate()
}

// PrepareDateText strips the time portion from combined date+time
// strings and normalizes whitespace so the layout list can match.
// "Dec 10, 2025 at 10:00 AM" and "Dec 10, 2025 @ 10 AM" both reduce to
// "Dec 10, 2025".
func PrepareDateText(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[:i]
	}
	lower := strings.ToLower(s)
	if i := strings.Index(lower, " at "); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), " ")
}

// SplitDateTime separates a combined "date @ time" or "date at time"
// string into its two halves. When no separator is present the whole
// string is returned as the date part.
func SplitDateTime(text string) (dateText, timeText string) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "@"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	lower := strings.ToLower(s)
	if i := strings.Index(lower, " at "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+4:])
	}
	return s, ""
}
