// Command aggregator runs the library event pipeline: scheduled crawls
// of every configured source, an on-disk snapshot of the merged event
// set, and the HTTP API that serves listing, export, progress and
// refresh endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"library-events/internal/config"
	hhttp "library-events/internal/handler/http"
	"library-events/internal/infra/geocoder"
	"library-events/internal/infra/progress"
	"library-events/internal/infra/scraper"
	"library-events/internal/infra/snapshot"
	workerPkg "library-events/internal/infra/worker"
	"library-events/internal/observability/logging"
	"library-events/internal/usecase/aggregate"
	"library-events/internal/usecase/query"
	"library-events/internal/usecase/refresh"
)

const (
	progressFilename = "progress.json"
	geocodeFilename  = "geocode_cache.json"
)

type cliFlags struct {
	once      bool
	startDate string
	days      int
}

func main() {
	flags := parseFlags()
	logger := initLogger()

	cfg := workerPkg.LoadConfigFromEnv(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	loc := cfg.Location()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load source catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("source catalog loaded",
		slog.Int("sources", len(catalog.Sources)),
		slog.Int("active", len(catalog.Active())))

	window, err := buildWindowFunc(flags, cfg, loc)
	if err != nil {
		logger.Error("invalid date window", slog.Any("error", err))
		os.Exit(1)
	}

	reporter := progress.NewFileReporter(filepath.Join(cfg.DataDir, progressFilename))
	aggService, releasePool := setupAggregation(logger, cfg, catalog, reporter)

	store, err := snapshot.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error("failed to prepare data directory", slog.Any("error", err))
		os.Exit(1)
	}

	if flags.once {
		runOnce(logger, aggService, releasePool, store, window(), loc)
		return
	}

	runServer(logger, cfg, catalog, aggService, releasePool, store, reporter, window, loc)
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.BoolVar(&flags.once, "once", false, "run a single aggregation pass and exit")
	flag.StringVar(&flags.startDate, "start-date", "", "window start as YYYY-MM-DD (default today)")
	flag.IntVar(&flags.days, "days", 0, "window length in days (overrides WINDOW_DAYS)")
	flag.Parse()
	return flags
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// buildWindowFunc resolves the date window. Flags win over environment
// configuration. A fixed -start-date pins the window; otherwise each
// run starts on the current day.
func buildWindowFunc(flags cliFlags, cfg workerPkg.Config, loc *time.Location) (func() aggregate.Window, error) {
	days := cfg.WindowDays
	if flags.days > 0 {
		days = flags.days
	}

	if flags.startDate != "" {
		start, err := time.ParseInLocation("2006-01-02", flags.startDate, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid -start-date %q, want YYYY-MM-DD", flags.startDate)
		}
		return func() aggregate.Window {
			return aggregate.Window{Start: start, Days: days}
		}, nil
	}

	return func() aggregate.Window {
		now := time.Now().In(loc)
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return aggregate.Window{Start: start, Days: days}
	}, nil
}

// setupAggregation wires the fetch adapters to the aggregation service.
// The render client is only constructed when the catalog has active
// sources that need it. The returned release func drops the shared
// connection pool and is called after each aggregation pass.
func setupAggregation(logger *slog.Logger, cfg workerPkg.Config, catalog *config.Catalog, reporter aggregate.Reporter) (*aggregate.Service, func()) {
	httpClient := scraper.NewHTTPClient(cfg.CrawlTimeout)

	var render *scraper.RenderClient
	if catalog.NeedsRenderAPI() {
		if cfg.RenderAPIKey == "" {
			logger.Warn("catalog needs the render API but RENDER_API_KEY is unset, those sources will fail")
		}
		render = scraper.NewRenderClient(httpClient, cfg.RenderBaseURL, cfg.RenderAPIKey)
	}

	factory := scraper.NewFactory(httpClient, render)
	limits := aggregate.Limits{
		RenderAPI: int64(cfg.RenderConcurrency),
		HTTP:      int64(cfg.HTTPConcurrency),
	}

	return aggregate.NewService(catalog.Sources, factory.CreateAdapters(), reporter, limits), factory.Release
}

// runOnce executes one aggregation pass synchronously and writes the
// snapshot. Used for cron-from-the-outside setups and manual refreshes.
func runOnce(logger *slog.Logger, svc *aggregate.Service, releasePool func(), store *snapshot.Store, window aggregate.Window, loc *time.Location) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := svc.Run(ctx, window)
	releasePool()
	if err != nil {
		logger.Error("aggregation failed", slog.Any("error", err))
		os.Exit(1)
	}

	path, err := store.Write(result.Events, time.Now().In(loc))
	if err != nil {
		logger.Error("failed to write snapshot", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("aggregation completed",
		slog.Int("events", len(result.Events)),
		slog.Int("failures", len(result.Failures)),
		slog.String("snapshot", path))
	if len(result.Failures) == result.Stats.Sources && len(result.Failures) > 0 {
		os.Exit(1)
	}
}

func runServer(
	logger *slog.Logger,
	cfg workerPkg.Config,
	catalog *config.Catalog,
	aggService *aggregate.Service,
	releasePool func(),
	store *snapshot.Store,
	reporter *progress.FileReporter,
	window func() aggregate.Window,
	loc *time.Location,
) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eventStore := hhttp.NewEventStore()
	loadSnapshot(logger, store, eventStore)

	geoService, geoCache := setupGeocoder(logger, cfg)
	querySvc := query.NewService(catalog.Sources, geoService)

	progressPath := filepath.Join(cfg.DataDir, progressFilename)

	healthServer := startHealthServer(ctx, logger, cfg, eventStore)
	startMetricsServer(ctx, logger, cfg)

	runner := releasingRunner{svc: aggService, release: releasePool}
	job := refresh.NewJob(runner, reporter, cfg.CrawlTimeout, func(result *aggregate.Result) {
		if _, err := store.Write(result.Events, time.Now().In(loc)); err != nil {
			logger.Error("failed to write snapshot", slog.Any("error", err))
		}
		eventStore.Replace(result.Events)
		healthServer.SetReady(true)
	})

	scheduler := startScheduler(logger, cfg, loc, job, window)
	defer scheduler.Stop()

	router := hhttp.NewRouter(hhttp.RouterConfig{
		Logger:       logger,
		Store:        eventStore,
		Query:        querySvc,
		Location:     loc,
		ProgressPath: progressPath,
		Job:          job,
		Window:       window,
	})

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server started", slog.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	job.Cancel()
	job.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", slog.Any("error", err))
	}

	if geoCache != nil {
		if err := geoCache.Flush(); err != nil {
			logger.Error("failed to flush geocode cache", slog.Any("error", err))
		}
	}
	logger.Info("shutdown complete")
}

// releasingRunner drops the shared connection pool once a pass ends,
// whether it succeeded or not. Sockets then never idle between
// scheduled crawls.
type releasingRunner struct {
	svc     *aggregate.Service
	release func()
}

func (r releasingRunner) Run(ctx context.Context, window aggregate.Window) (*aggregate.Result, error) {
	defer r.release()
	return r.svc.Run(ctx, window)
}

func loadSnapshot(logger *slog.Logger, store *snapshot.Store, eventStore *hhttp.EventStore) {
	records, path, err := store.LoadLatest()
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		logger.Info("no snapshot found, serving empty set until first refresh")
	case err != nil:
		logger.Error("failed to load snapshot", slog.Any("error", err))
	default:
		eventStore.Replace(records)
		logger.Info("snapshot loaded", slog.String("path", path), slog.Int("events", len(records)))
	}
}

func setupGeocoder(logger *slog.Logger, cfg workerPkg.Config) (*geocoder.Service, *geocoder.FileCache) {
	cachePath := filepath.Join(cfg.DataDir, geocodeFilename)
	cache, err := geocoder.LoadCache(cachePath)
	if err != nil {
		logger.Warn("geocode cache unreadable, starting empty", slog.Any("error", err))
		cache = geocoder.NewCache(cachePath)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return geocoder.NewService(client, cache, ""), cache
}

func startScheduler(
	logger *slog.Logger,
	cfg workerPkg.Config,
	loc *time.Location,
	job *refresh.Job,
	window func() aggregate.Window,
) *cron.Cron {
	scheduler := cron.New(cron.WithLocation(loc))
	_, err := scheduler.AddFunc(cfg.CronSchedule, func() {
		if err := job.Start(window()); err != nil {
			if errors.Is(err, refresh.ErrAlreadyRunning) {
				logger.Warn("scheduled refresh skipped, previous run still in flight")
				return
			}
			logger.Error("scheduled refresh failed to start", slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("invalid cron schedule", slog.String("schedule", cfg.CronSchedule), slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("scheduler started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", loc.String()))
	return scheduler
}

func startHealthServer(ctx context.Context, logger *slog.Logger, cfg workerPkg.Config, store *hhttp.EventStore) *workerPkg.HealthServer {
	addr := fmt.Sprintf(":%d", cfg.HealthPort)
	server := workerPkg.NewHealthServer(addr, logger)
	if !store.UpdatedAt().IsZero() {
		server.SetReady(true)
	}
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health server started", slog.String("addr", addr))
	return server
}
