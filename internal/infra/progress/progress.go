// Package progress mirrors aggregation run state into a JSON file so
// the HTTP API can serve live status while a refresh runs in the
// background, and the last outcome after it finishes.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"library-events/internal/usecase/aggregate"
)

// Per-source status values.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusRetrying  = "retrying"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run-level states. Idle is what a fresh deployment reports before the
// first run; queued bridges the gap between accepting a refresh and
// the run actually starting.
const (
	StateIdle      = "idle"
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateError     = "error"
)

// SourceStatus is one source's progress within the current run.
type SourceStatus struct {
	Status    string    `json:"status"`
	Events    int       `json:"events"`
	Attempts  int       `json:"attempts,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the run-level rollup the UI polls.
type Summary struct {
	State        string `json:"state"`
	Message      string `json:"message"`
	TotalSources int    `json:"total_sources"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	Running      int    `json:"running"`
	Pending      int    `json:"pending"`
	Events       int    `json:"events"`
}

// Snapshot is the full progress document.
type Snapshot struct {
	Summary   Summary                  `json:"summary"`
	Sources   map[string]*SourceStatus `json:"sources"`
	StartedAt time.Time                `json:"started_at,omitempty"`
	UpdatedAt time.Time                `json:"updated_at,omitempty"`
}

func idleSnapshot() Snapshot {
	return Snapshot{
		Summary: Summary{State: StateIdle, Message: "Waiting to start"},
		Sources: map[string]*SourceStatus{},
	}
}

// FileReporter implements the aggregation progress contract by
// persisting every transition to a JSON file. Write failures are
// logged, never propagated; losing a progress update must not abort a
// run.
type FileReporter struct {
	path string

	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

// NewFileReporter builds a reporter writing to path. Existing content
// is ignored; each run starts from a fresh document.
func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path, snap: idleSnapshot(), now: time.Now}
}

// SetState overwrites the run-level state and message without touching
// per-source data. The refresh job uses it for the queued and error
// transitions that happen outside an aggregation run.
func (r *FileReporter) SetState(state, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Summary.State = state
	r.snap.Summary.Message = message
	r.flushLocked()
}

// RunStarted resets the document for a new run with every source
// pending.
func (r *FileReporter) RunStarted(sourceNames []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.snap = Snapshot{
		Summary: Summary{
			State:        StateRunning,
			Message:      fmt.Sprintf("Fetching %d sources", len(sourceNames)),
			TotalSources: len(sourceNames),
			Pending:      len(sourceNames),
		},
		Sources:   make(map[string]*SourceStatus, len(sourceNames)),
		StartedAt: now,
	}
	for _, name := range sourceNames {
		r.snap.Sources[name] = &SourceStatus{Status: StatusPending, UpdatedAt: now}
	}
	r.flushLocked()
}

// SourceStarted marks one source as in flight.
func (r *FileReporter) SourceStarted(name string) {
	r.update(name, func(s *SourceStatus) {
		s.Status = StatusRunning
	})
}

// SourceRetrying records a failed attempt that will be retried.
func (r *FileReporter) SourceRetrying(name string, attempt int) {
	r.update(name, func(s *SourceStatus) {
		s.Status = StatusRetrying
		s.Attempts = attempt
	})
}

// SourceCompleted marks a source done with its event count.
func (r *FileReporter) SourceCompleted(name string, events int) {
	r.update(name, func(s *SourceStatus) {
		s.Status = StatusCompleted
		s.Events = events
		s.Error = ""
	})
}

// SourceFailed marks a source as exhausted with its final error.
func (r *FileReporter) SourceFailed(name string, err error) {
	r.update(name, func(s *SourceStatus) {
		s.Status = StatusFailed
		if err != nil {
			s.Error = err.Error()
		}
	})
}

// RunCompleted records the final outcome.
func (r *FileReporter) RunCompleted(state, message string, events int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch state {
	case aggregate.StateDone:
		r.snap.Summary.State = StateCompleted
	case aggregate.StateError:
		r.snap.Summary.State = StateError
	default:
		r.snap.Summary.State = state
	}
	r.snap.Summary.Message = message
	r.snap.Summary.Events = events
	r.flushLocked()
}

// Snapshot returns a deep copy of the current document.
func (r *FileReporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySnapshot(r.snap)
}

func (r *FileReporter) update(name string, fn func(*SourceStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.snap.Sources[name]
	if !ok {
		status = &SourceStatus{}
		r.snap.Sources[name] = status
	}
	fn(status)
	status.UpdatedAt = r.now()
	r.recountLocked()
	r.flushLocked()
}

func (r *FileReporter) recountLocked() {
	sum := &r.snap.Summary
	sum.Succeeded, sum.Failed, sum.Running, sum.Pending = 0, 0, 0, 0
	for _, s := range r.snap.Sources {
		switch s.Status {
		case StatusCompleted:
			sum.Succeeded++
		case StatusFailed:
			sum.Failed++
		case StatusRunning, StatusRetrying:
			sum.Running++
		default:
			sum.Pending++
		}
	}
}

func (r *FileReporter) flushLocked() {
	r.snap.UpdatedAt = r.now()

	data, err := json.MarshalIndent(r.snap, "", "  ")
	if err != nil {
		slog.Warn("failed to encode progress", "error", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".progress-*.json")
	if err != nil {
		slog.Warn("failed to write progress", "path", r.path, "error", err)
		return
	}
	if _, err := tmp.Write(data); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmp.Name())
		slog.Warn("failed to write progress", "path", r.path, "error", err)
		return
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		slog.Warn("failed to publish progress", "path", r.path, "error", err)
	}
}

// Read loads the progress document at path. A missing file yields the
// idle snapshot; a corrupt one yields an error-state snapshot so the
// UI shows something actionable instead of a 500.
func Read(path string) Snapshot {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return idleSnapshot()
	}
	if err == nil {
		var snap Snapshot
		if jsonErr := json.Unmarshal(data, &snap); jsonErr == nil {
			if snap.Sources == nil {
				snap.Sources = map[string]*SourceStatus{}
			}
			return snap
		}
		err = fmt.Errorf("parse progress file: invalid JSON")
	}
	return Snapshot{
		Summary: Summary{State: StateError, Message: fmt.Sprintf("Could not read progress: %v", err)},
		Sources: map[string]*SourceStatus{},
	}
}

func copySnapshot(snap Snapshot) Snapshot {
	out := snap
	out.Sources = make(map[string]*SourceStatus, len(snap.Sources))
	for name, s := range snap.Sources {
		copied := *s
		out.Sources[name] = &copied
	}
	return out
}
