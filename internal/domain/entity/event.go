// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as EventRecord and Source, along with
// their validation rules and domain-specific errors.
package entity

import (
	"sort"
	"strings"
	"time"
)

// DescriptionNotFound is the sentinel value adapters emit when a source
// exposes no description for an event. It is distinct from the empty
// string, which means the field was never present at all.
const DescriptionNotFound = "Not found"

// Date is a calendar date that may be unknown. An unparsable date is a
// valid terminal state for an event, not an error: such records survive
// the pipeline but are excluded from calendar export and date filtering.
type Date struct {
	// Time holds midnight UTC of the calendar date. Zero when !Known.
	Time  time.Time
	Known bool
}

// NewDate returns a known Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Known: true}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// UnknownDate is the sentinel for a date that could not be parsed.
func UnknownDate() Date {
	return Date{}
}

// Before reports whether d is strictly earlier than other.
// An unknown date is never before anything; every known date is before
// an unknown one, so unknown dates always sort last.
func (d Date) Before(other Date) bool {
	if !d.Known {
		return false
	}
	if !other.Known {
		return true
	}
	return d.Time.Before(other.Time)
}

// Equal reports whether two dates denote the same calendar day.
// Two unknown dates are equal.
func (d Date) Equal(other Date) bool {
	if d.Known != other.Known {
		return false
	}
	return !d.Known || d.Time.Equal(other.Time)
}

// String returns the ISO form ("2025-12-10"), or "Not found" when unknown.
// The unknown form matches what tabular exports display.
func (d Date) String() string {
	if !d.Known {
		return DescriptionNotFound
	}
	return d.Time.Format("2006-01-02")
}

// Display returns the long human-readable form used by reports,
// e.g. "Wednesday, December 10, 2025".
func (d Date) Display() string {
	if !d.Known {
		return "Date TBD"
	}
	return d.Time.Format("Monday, January 2, 2006")
}

// TimeKind classifies a time-of-day value.
type TimeKind int

const (
	// TimeUnknown marks a time that could not be parsed. Sorts after all
	// known times on the same date.
	TimeUnknown TimeKind = iota
	// TimeAllDay marks an all-day event. Sorts before all timed entries.
	TimeAllDay
	// TimeAt marks a concrete time of day.
	TimeAt
)

// TimeOfDay is a normalized time-of-day: a concrete time, an all-day
// marker, or unknown.
type TimeOfDay struct {
	Kind TimeKind
	// Minutes since midnight. Meaningful only when Kind == TimeAt.
	Minutes int
}

// TimeAtMinutes returns a concrete TimeOfDay.
func TimeAtMinutes(m int) TimeOfDay {
	return TimeOfDay{Kind: TimeAt, Minutes: m}
}

// unknownTimeSortKey is larger than any minute of the day so unparsable
// times sort last.
const unknownTimeSortKey = 1 << 20

// SortKey returns an integer ordering key: all-day first, then timed
// entries by minute, then unknown.
func (t TimeOfDay) SortKey() int {
	switch t.Kind {
	case TimeAllDay:
		return -1
	case TimeAt:
		return t.Minutes
	default:
		return unknownTimeSortKey
	}
}

// Clock returns the hour and minute of a concrete time.
func (t TimeOfDay) Clock() (hour, minute int) {
	return t.Minutes / 60, t.Minutes % 60
}

// String renders the time in 12-hour form ("10:00 AM"), "All Day", or
// "Not found".
func (t TimeOfDay) String() string {
	switch t.Kind {
	case TimeAllDay:
		return "All Day"
	case TimeAt:
		h, m := t.Clock()
		return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
	default:
		return DescriptionNotFound
	}
}

// RawEvent is the loosely typed record a source adapter produces before
// normalization. Date and time are still raw text; everything else is a
// best-effort string extraction. Adapters must never hand anything else
// to the shared pipeline.
type RawEvent struct {
	Title       string
	DateText    string
	TimeText    string
	Location    string
	Audience    []string
	Category    string
	Description string
	Link        string
}

// EventRecord is the canonical, normalized unit flowing through the
// pipeline after the source adapter boundary.
type EventRecord struct {
	SourceID    string
	Library     string
	Title       string
	Date        Date
	Time        TimeOfDay
	EndTime     TimeOfDay
	TimeRaw     string
	Location    string
	Audience    []string
	Category    string
	Description string
	Link        string
	FetchedAt   time.Time
}

// identitySep separates identity key parts. A control character keeps
// field contents from colliding with the separator.
const identitySep = "\x1f"

// IdentityKey returns the duplicate-detection key: two records with the
// same source, title, date and raw time text are the same event
// regardless of other field differences.
func (e *EventRecord) IdentityKey() string {
	return strings.Join([]string{
		e.SourceID,
		strings.ToLower(strings.TrimSpace(e.Title)),
		e.Date.String(),
		strings.ToLower(strings.TrimSpace(e.TimeRaw)),
	}, identitySep)
}

// HasLink reports whether the record carries a usable URL. The "N/A"
// absent-marker some sources emit is mapped to empty during
// normalization, so only the empty string means absent here.
func (e *EventRecord) HasLink() bool {
	return e.Link != ""
}

// NormalizeAudience deduplicates and sorts audience tags so the set is
// order-independent and comparable.
func NormalizeAudience(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
