package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/normalize"
	"library-events/internal/observability/metrics"
	"library-events/internal/resilience/retry"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Limits caps in-flight fetches per transport. The render API quota is
// shared across all sources behind it, so its ceiling stays low.
type Limits struct {
	RenderAPI int64
	HTTP      int64
}

// DefaultLimits returns the standard transport ceilings.
func DefaultLimits() Limits {
	return Limits{RenderAPI: 1, HTTP: 5}
}

// Service runs the aggregation pipeline over a source catalog.
type Service struct {
	sources  []*entity.Source
	adapters map[entity.SourceKind]Adapter
	reporter Reporter
	limits   Limits
}

// NewService creates an aggregation Service. reporter may be nil to
// disable progress reporting.
func NewService(
	sources []*entity.Source,
	adapters map[entity.SourceKind]Adapter,
	reporter Reporter,
	limits Limits,
) *Service {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if limits.RenderAPI <= 0 {
		limits.RenderAPI = DefaultLimits().RenderAPI
	}
	if limits.HTTP <= 0 {
		limits.HTTP = DefaultLimits().HTTP
	}
	return &Service{
		sources:  sources,
		adapters: adapters,
		reporter: reporter,
		limits:   limits,
	}
}

// Run fetches every active source inside the window, normalizes and
// merges the results. Source failures never abort the run: each failed
// source is recorded in Result.Failures and its completed peers are
// kept, including when the context deadline expires mid-run. Run
// returns an error only when no source could even be attempted.
func (s *Service) Run(ctx context.Context, window Window) (*Result, error) {
	logger := slog.Default()
	startAll := time.Now()

	active := s.activeSources()
	if len(active) == 0 {
		return nil, errors.New("no active sources with a usable adapter")
	}
	metrics.UpdateSourcesTotal(len(active))

	names := make([]string, len(active))
	for i, src := range active {
		names[i] = src.Name
	}
	s.reporter.RunStarted(names)

	sems := map[entity.Transport]*semaphore.Weighted{
		entity.TransportRenderAPI: semaphore.NewWeighted(s.limits.RenderAPI),
		entity.TransportHTTP:      semaphore.NewWeighted(s.limits.HTTP),
	}

	// Per-source slots keep merge order fixed to catalog order no matter
	// which goroutine finishes first.
	perSource := make([][]*entity.EventRecord, len(active))
	failures := make([]*SourceFailure, len(active))

	var eg errgroup.Group
	for i, source := range active {
		i, src := i, source

		eg.Go(func() error {
			sem := sems[src.Transport]
			if sem == nil {
				sem = sems[entity.TransportHTTP]
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				failures[i] = &SourceFailure{SourceID: src.ID, Name: src.Name, Err: err}
				metrics.RecordSourceCrawlError(src.Name, classifyError(err))
				s.reporter.SourceFailed(src.Name, err)
				return nil
			}
			defer sem.Release(1)

			s.reporter.SourceStarted(src.Name)
			sourceStart := time.Now()

			cfg := retryConfigFor(src.Transport)
			cfg.OnRetry = func(attempt int, err error) {
				s.reporter.SourceRetrying(src.Name, attempt)
			}

			var raws []entity.RawEvent
			err := retry.WithBackoff(ctx, cfg, func() error {
				var ferr error
				raws, ferr = s.adapters[src.Kind].Fetch(ctx, src, window)
				return ferr
			})

			sourceDuration := time.Since(sourceStart)
			metrics.RecordSourceCrawl(src.Name, sourceDuration)

			if err != nil {
				failures[i] = &SourceFailure{SourceID: src.ID, Name: src.Name, Err: err}
				metrics.RecordSourceCrawlError(src.Name, classifyError(err))
				s.reporter.SourceFailed(src.Name, err)
				logger.Warn("source fetch failed",
					slog.String("source_id", src.ID),
					slog.String("source", src.Name),
					slog.Duration("duration", sourceDuration),
					slog.Any("error", err))
				return nil
			}

			fetchedAt := time.Now()
			records := make([]*entity.EventRecord, 0, len(raws))
			for _, raw := range raws {
				if rec, ok := normalize.Record(src, raw, fetchedAt); ok {
					records = append(records, rec)
				}
			}
			perSource[i] = records

			metrics.RecordEventsFetched(src.Name, len(records))
			s.reporter.SourceCompleted(src.Name, len(records))
			logger.Info("source fetch completed",
				slog.String("source_id", src.ID),
				slog.String("source", src.Name),
				slog.Int("raw_events", len(raws)),
				slog.Int("events", len(records)),
				slog.Duration("duration", sourceDuration))
			return nil
		})
	}

	// Goroutines report failures through the slots and always return nil.
	_ = eg.Wait()

	var all []*entity.EventRecord
	for _, records := range perSource {
		all = append(all, records...)
	}

	kept, dropped := Dedupe(all)
	metrics.RecordDeduplicated(dropped)
	sortRecords(kept)

	result := &Result{
		Events: kept,
		Stats: Stats{
			Sources:    len(active),
			Fetched:    len(all),
			Duplicates: dropped,
			Duration:   time.Since(startAll),
		},
	}
	for _, f := range failures {
		if f != nil {
			result.Failures = append(result.Failures, *f)
		}
	}

	metrics.RecordAggregationRun(result.Stats.Duration)
	metrics.UpdateEventsTotal(len(kept))

	state := StateDone
	if len(result.Failures) == len(active) {
		state = StateError
	}
	message := fmt.Sprintf("%d events from %d/%d sources",
		len(kept), len(active)-len(result.Failures), len(active))
	s.reporter.RunCompleted(state, message, len(kept))

	logger.Info("aggregation run completed",
		slog.Int("sources", result.Stats.Sources),
		slog.Int("fetched", result.Stats.Fetched),
		slog.Int("events", len(kept)),
		slog.Int("duplicates", dropped),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("duration", result.Stats.Duration))

	return result, nil
}

// activeSources filters the catalog to active sources that have a
// registered adapter, preserving catalog order.
func (s *Service) activeSources() []*entity.Source {
	var active []*entity.Source
	for _, src := range s.sources {
		if !src.Active {
			continue
		}
		if _, ok := s.adapters[src.Kind]; !ok {
			slog.Warn("no adapter for source kind, skipping",
				slog.String("source_id", src.ID),
				slog.String("kind", string(src.Kind)))
			continue
		}
		active = append(active, src)
	}
	return active
}

// retryConfigFor maps a transport to its retry policy.
func retryConfigFor(t entity.Transport) retry.Config {
	if t == entity.TransportRenderAPI {
		return retry.RenderAPIConfig()
	}
	return retry.DirectHTTPConfig()
}

// classifyError buckets a fetch error into a coarse metric label.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		var rlErr *retry.RateLimitError
		if errors.As(err, &rlErr) {
			return "rate_limited"
		}
		return "fetch_failed"
	}
}

// sortRecords orders the merged set deterministically: date ascending
// with unknown dates last, then library name, then time-of-day sort key
// with unknown times last, then title.
func sortRecords(records []*entity.EventRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Library != b.Library {
			return a.Library < b.Library
		}
		if a.Time.SortKey() != b.Time.SortKey() {
			return a.Time.SortKey() < b.Time.SortKey()
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}
