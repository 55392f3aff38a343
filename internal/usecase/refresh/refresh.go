// Package refresh runs aggregation as a single-flight background job.
// The HTTP API triggers it and polls progress; a second trigger while
// one is in flight is rejected instead of queued.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"library-events/internal/observability/metrics"
	"library-events/internal/usecase/aggregate"
)

// ErrAlreadyRunning is returned by Start while a job is in flight.
var ErrAlreadyRunning = errors.New("refresh already running")

// Job lifecycle states.
const (
	StateIdle      = "idle"
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateError     = "error"
)

// defaultTimeout bounds one whole refresh run. A full crawl of every
// source normally finishes well inside five minutes.
const defaultTimeout = 5*time.Minute + 30*time.Second

// Runner executes one aggregation pass.
type Runner interface {
	Run(ctx context.Context, window aggregate.Window) (*aggregate.Result, error)
}

// StatusSink receives job-level state changes that happen outside an
// aggregation run, before it starts and when it fails to start.
type StatusSink interface {
	SetState(state, message string)
}

type nopSink struct{}

func (nopSink) SetState(string, string) {}

// Status describes the job at a point in time.
type Status struct {
	State      string
	StartedAt  time.Time
	FinishedAt time.Time
	Events     int
	Err        error
}

// Job owns the single background refresh slot.
type Job struct {
	runner   Runner
	sink     StatusSink
	timeout  time.Duration
	onResult func(*aggregate.Result)

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJob builds a refresh job. onResult, when non-nil, receives every
// successful run's result before the job is marked completed; the
// server uses it to swap in the new event set and write the snapshot.
func NewJob(runner Runner, sink StatusSink, timeout time.Duration, onResult func(*aggregate.Result)) *Job {
	if sink == nil {
		sink = nopSink{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Job{
		runner:   runner,
		sink:     sink,
		timeout:  timeout,
		onResult: onResult,
		status:   Status{State: StateIdle},
	}
}

// Start launches a refresh for the given window. It returns
// ErrAlreadyRunning when a job is in flight and never blocks on the
// run itself.
func (j *Job) Start(window aggregate.Window) error {
	j.mu.Lock()
	if j.status.State == StateQueued || j.status.State == StateRunning {
		j.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	j.cancel = cancel
	j.done = make(chan struct{})
	j.status = Status{State: StateQueued, StartedAt: time.Now()}
	done := j.done
	j.mu.Unlock()

	j.sink.SetState(StateQueued, "Refresh requested")
	slog.Info("refresh started", "window_start", window.Start.Format("2006-01-02"), "window_days", window.Days)

	go func() {
		defer cancel()
		defer close(done)
		j.run(ctx, window)
	}()
	return nil
}

func (j *Job) run(ctx context.Context, window aggregate.Window) {
	j.setState(StateRunning, nil, 0)

	result, err := j.runner.Run(ctx, window)
	if err == nil && len(result.Failures) > 0 && len(result.Failures) == result.Stats.Sources {
		err = fmt.Errorf("all %d sources failed", len(result.Failures))
	}
	if err != nil {
		j.setState(StateError, err, 0)
		j.sink.SetState(StateError, fmt.Sprintf("Refresh failed: %v", err))
		metrics.RecordRefreshRun("error")
		slog.Error("refresh failed", "error", err)
		return
	}

	if j.onResult != nil {
		j.onResult(result)
	}
	j.setState(StateCompleted, nil, len(result.Events))
	metrics.RecordRefreshRun("completed")
	slog.Info("refresh completed",
		"events", len(result.Events),
		"duplicates", result.Stats.Duplicates,
		"failures", len(result.Failures),
		"duration", result.Stats.Duration)
}

func (j *Job) setState(state string, err error, events int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status.State = state
	j.status.Err = err
	if state == StateCompleted || state == StateError {
		j.status.FinishedAt = time.Now()
		j.status.Events = events
	}
}

// Cancel aborts an in-flight run. The run winds down asynchronously;
// completed sources keep their results.
func (j *Job) Cancel() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current run finishes. It returns immediately
// when nothing is running.
func (j *Job) Wait() {
	j.mu.Lock()
	done := j.done
	j.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Status returns the current job status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Running reports whether a job is in flight.
func (j *Job) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status.State == StateQueued || j.status.State == StateRunning
}
