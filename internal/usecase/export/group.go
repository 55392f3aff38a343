// Package export turns filtered event sets into downloadable artifacts:
// calendar files, CSV and a paginated report model. All writers share
// one grouping: date, then library, then time of day.
package export

import (
	"sort"
	"strings"

	"library-events/internal/domain/entity"
)

// LibraryGroup is one library's events on a single day, time-ordered.
type LibraryGroup struct {
	Name   string
	Events []*entity.EventRecord
}

// DayGroup is all events on one date, split per library. Label is the
// display form ("Wednesday, December 10, 2025", or "Date TBD").
type DayGroup struct {
	Date      entity.Date
	Label     string
	Libraries []LibraryGroup
}

// Group orders records into day sections: dates ascending with unknown
// dates last, libraries alphabetical inside a day, events by time of
// day (all-day first, unknown times last) inside a library.
func Group(records []*entity.EventRecord) []DayGroup {
	type libKey struct {
		date entity.Date
		lib  string
	}

	byDate := make(map[string]*DayGroup)
	byLib := make(map[libKey][]*entity.EventRecord)
	var order []string

	for _, rec := range records {
		dateKey := rec.Date.String()
		if _, ok := byDate[dateKey]; !ok {
			byDate[dateKey] = &DayGroup{Date: rec.Date, Label: rec.Date.Display()}
			order = append(order, dateKey)
		}
		lib := rec.Library
		if lib == "" {
			lib = "Unknown Library"
		}
		byLib[libKey{rec.Date, lib}] = append(byLib[libKey{rec.Date, lib}], rec)
	}

	groups := make([]DayGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byDate[key])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})

	for gi := range groups {
		var libs []string
		seen := make(map[string]struct{})
		for key := range byLib {
			if key.date.Equal(groups[gi].Date) {
				if _, ok := seen[key.lib]; !ok {
					seen[key.lib] = struct{}{}
					libs = append(libs, key.lib)
				}
			}
		}
		sort.Strings(libs)

		for _, lib := range libs {
			events := byLib[libKey{groups[gi].Date, lib}]
			sort.SliceStable(events, func(i, j int) bool {
				if events[i].Time.SortKey() != events[j].Time.SortKey() {
					return events[i].Time.SortKey() < events[j].Time.SortKey()
				}
				return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
			})
			groups[gi].Libraries = append(groups[gi].Libraries, LibraryGroup{Name: lib, Events: events})
		}
	}

	return groups
}
