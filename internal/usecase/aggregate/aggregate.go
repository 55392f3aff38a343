// Package aggregate orchestrates fetching events from every active
// source, normalizing them into a single schema and merging the results
// into one deduplicated, deterministically ordered set.
package aggregate

import (
	"context"
	"time"

	"library-events/internal/domain/entity"
)

// Run states reported through the progress store.
const (
	StateRunning = "running"
	StateDone    = "done"
	StateError   = "error"
)

// Window is the date window a run covers: Days days starting at Start.
// Start is interpreted as a calendar date; the clock portion is ignored.
type Window struct {
	Start time.Time
	Days  int
}

// End returns the exclusive end of the window.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, w.Days)
}

// Contains reports whether a date falls inside the window. Both bounds
// are reduced to calendar dates first, so a Start built in any timezone
// keeps its start day and excludes the day End() lands on. Unknown
// dates are outside every window.
func (w Window) Contains(d entity.Date) bool {
	if !d.Known {
		return false
	}
	start := entity.DateOf(w.Start)
	end := entity.DateOf(w.End())
	return !d.Before(start) && d.Before(end)
}

// Adapter fetches raw, unnormalized events for a single source.
// Implementations must respect context cancellation and return zero or
// more events; parse failures inside a payload drop the item, not the run.
type Adapter interface {
	Fetch(ctx context.Context, src *entity.Source, window Window) ([]entity.RawEvent, error)
}

// Reporter receives run lifecycle callbacks. Implementations must be
// safe for concurrent use; the orchestrator calls them from fetch
// goroutines.
type Reporter interface {
	RunStarted(sources []string)
	SourceStarted(name string)
	SourceRetrying(name string, attempt int)
	SourceCompleted(name string, events int)
	SourceFailed(name string, err error)
	RunCompleted(state, message string, events int)
}

// NopReporter is a Reporter that discards all callbacks.
type NopReporter struct{}

func (NopReporter) RunStarted([]string)             {}
func (NopReporter) SourceStarted(string)            {}
func (NopReporter) SourceRetrying(string, int)      {}
func (NopReporter) SourceCompleted(string, int)     {}
func (NopReporter) SourceFailed(string, error)      {}
func (NopReporter) RunCompleted(string, string, int) {}

// SourceFailure records one source that could not be fetched during a run.
type SourceFailure struct {
	SourceID string
	Name     string
	Err      error
}

// Stats summarizes a completed aggregation run.
type Stats struct {
	Sources    int
	Fetched    int
	Duplicates int
	Duration   time.Duration
}

// Result is the outcome of an aggregation run. Events holds the merged,
// deduplicated, ordered set; Failures lists sources that produced no data.
type Result struct {
	Events   []*entity.EventRecord
	Failures []SourceFailure
	Stats    Stats
}
