package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/usecase/aggregate"
	"library-events/internal/usecase/query"
	"library-events/internal/usecase/refresh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	release chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, window aggregate.Window) (*aggregate.Result, error) {
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &aggregate.Result{
		Events: []*entity.EventRecord{{Title: "Story Time"}},
		Stats:  aggregate.Stats{Sources: 1, Fetched: 1},
	}, nil
}

func failingRunner(err error) refresh.Runner {
	return runnerFunc(func(context.Context, aggregate.Window) (*aggregate.Result, error) {
		return nil, err
	})
}

type runnerFunc func(context.Context, aggregate.Window) (*aggregate.Result, error)

func (f runnerFunc) Run(ctx context.Context, w aggregate.Window) (*aggregate.Result, error) {
	return f(ctx, w)
}

func testWindow() func() aggregate.Window {
	return func() aggregate.Window {
		return aggregate.Window{Start: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), Days: 30}
	}
}

func newTestRouter(t *testing.T, job *refresh.Job, progressPath string) http.Handler {
	t.Helper()
	store := NewEventStore()
	store.Replace([]*entity.EventRecord{{
		Library: "Maplewood",
		Title:   "Story Time",
		Date:    entity.NewDate(2026, time.September, 1),
		TimeRaw: "10:00 AM",
	}})
	return NewRouter(RouterConfig{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:        store,
		Query:        query.NewService(nil, nil),
		Location:     time.UTC,
		ProgressPath: progressPath,
		Job:          job,
		Window:       testWindow(),
	})
}

func TestEventStore_ReplaceAndRead(t *testing.T) {
	store := NewEventStore()
	assert.True(t, store.UpdatedAt().IsZero())
	assert.Equal(t, 0, store.Len())

	records := []*entity.EventRecord{{Title: "A"}, {Title: "B"}}
	store.Replace(records)

	assert.Equal(t, 2, store.Len())
	assert.False(t, store.UpdatedAt().IsZero())
	assert.Equal(t, records, store.Records())
}

func TestHealth_ReadinessTracksStore(t *testing.T) {
	store := NewEventStore()
	mux := http.NewServeMux()
	NewHealthHandler(store).Register(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	store.Replace([]*entity.EventRecord{{Title: "A"}})
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"events":1`)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestProgress_MissingFileIsIdle(t *testing.T) {
	mux := http.NewServeMux()
	NewProgressHandler(filepath.Join(t.TempDir(), "progress.json")).Register(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/progress", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "idle", summary["state"])
}

func TestProgress_ServesFileContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	doc := `{"summary":{"state":"running","message":"Fetching","total_sources":2},"sources":{}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	mux := http.NewServeMux()
	NewProgressHandler(path).Register(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/progress", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"running"`)
	assert.Contains(t, rr.Body.String(), `"total_sources":2`)
}

func TestRefresh_TriggerAndConflict(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	job := refresh.NewJob(runner, nil, time.Minute, nil)
	router := newTestRouter(t, job, filepath.Join(t.TempDir(), "progress.json"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/refresh", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, []any{"queued", "running"}, body["state"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/refresh", nil))
	require.Equal(t, http.StatusConflict, rr.Code)

	close(runner.release)
	job.Wait()

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/refresh", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"completed"`)
}

func TestRefresh_ErrorSurfacesInStatus(t *testing.T) {
	job := refresh.NewJob(failingRunner(errors.New("all sources down")), nil, time.Minute, nil)
	mux := http.NewServeMux()
	NewRefreshHandler(job, testWindow()).Register(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/refresh", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	job.Wait()

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/refresh", nil))
	assert.Contains(t, rr.Body.String(), `"state":"error"`)
	assert.Contains(t, rr.Body.String(), "all sources down")
}

func TestRouter_EventsEndToEnd(t *testing.T) {
	job := refresh.NewJob(&blockingRunner{release: make(chan struct{})}, nil, time.Minute, nil)
	router := newTestRouter(t, job, filepath.Join(t.TempDir(), "progress.json"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/events", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Story Time")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover(logger))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/events", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	job := refresh.NewJob(&blockingRunner{release: make(chan struct{})}, nil, time.Minute, nil)
	router := newTestRouter(t, job, filepath.Join(t.TempDir(), "progress.json"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
