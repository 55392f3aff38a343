// Package worker holds the runtime plumbing shared by the long-lived
// processes: environment configuration and the health endpoint.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"library-events/internal/observability/metrics"
	"library-events/internal/pkg/config"
)

// Config is the aggregator's runtime configuration. Every field has a
// safe default so a broken environment degrades to defaults instead of
// refusing to start.
type Config struct {
	// CronSchedule fires the scheduled aggregation run. Five-field
	// cron expression, default 6:00 every morning.
	CronSchedule string

	// Timezone governs cron evaluation and calendar export.
	Timezone string

	// CrawlTimeout bounds one whole aggregation run.
	CrawlTimeout time.Duration

	// WindowDays is how far ahead of the start date to fetch.
	WindowDays int

	// RenderConcurrency and HTTPConcurrency cap in-flight sources per
	// transport.
	RenderConcurrency int
	HTTPConcurrency   int

	// RenderBaseURL and RenderAPIKey configure the markdown render
	// API. The key has no default; sources on the render transport are
	// skipped without it.
	RenderBaseURL string
	RenderAPIKey  string

	// CatalogPath locates the sources YAML file.
	CatalogPath string

	// DataDir holds snapshots, the progress file and the geocode cache.
	DataDir string

	// APIPort serves the query API; HealthPort the liveness probes;
	// MetricsPort the Prometheus endpoint.
	APIPort     int
	HealthPort  int
	MetricsPort int
}

// DefaultConfig returns production defaults: a morning crawl over a
// 30-day window, render traffic serialized, five direct connections.
func DefaultConfig() Config {
	return Config{
		CronSchedule:      "0 6 * * *",
		Timezone:          "America/Chicago",
		CrawlTimeout:      5*time.Minute + 30*time.Second,
		WindowDays:        30,
		RenderConcurrency: 1,
		HTTPConcurrency:   5,
		RenderBaseURL:     "https://api.firecrawl.dev",
		CatalogPath:       "sources.yaml",
		DataDir:           "data",
		APIPort:           8080,
		HealthPort:        9091,
		MetricsPort:       9090,
	}
}

// Validate checks all fields, collecting every violation.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.CrawlTimeout); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.WindowDays, 1, 365); err != nil {
		errs = append(errs, fmt.Errorf("window days: %w", err))
	}
	if err := config.ValidateIntRange(c.RenderConcurrency, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("render concurrency: %w", err))
	}
	if err := config.ValidateIntRange(c.HTTPConcurrency, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("http concurrency: %w", err))
	}
	for _, port := range []struct {
		name  string
		value int
	}{
		{"api port", c.APIPort},
		{"health port", c.HealthPort},
		{"metrics port", c.MetricsPort},
	} {
		if err := config.ValidateIntRange(port.value, 1024, 65535); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", port.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv builds the configuration from the environment,
// falling back field by field to the defaults. It never fails; every
// rejected value is logged and counted.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()

	cfg.CronSchedule = loadString(logger, "CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule, "cron_schedule")
	cfg.Timezone = loadString(logger, "TIMEZONE", cfg.Timezone, config.ValidateTimezone, "timezone")
	cfg.CrawlTimeout = loadDuration(logger, "CRAWL_TIMEOUT", cfg.CrawlTimeout, "crawl_timeout")
	cfg.WindowDays = loadInt(logger, "WINDOW_DAYS", cfg.WindowDays, 1, 365, "window_days")
	cfg.RenderConcurrency = loadInt(logger, "RENDER_CONCURRENCY", cfg.RenderConcurrency, 1, 10, "render_concurrency")
	cfg.HTTPConcurrency = loadInt(logger, "HTTP_CONCURRENCY", cfg.HTTPConcurrency, 1, 50, "http_concurrency")
	cfg.APIPort = loadInt(logger, "API_PORT", cfg.APIPort, 1024, 65535, "api_port")
	cfg.HealthPort = loadInt(logger, "HEALTH_PORT", cfg.HealthPort, 1024, 65535, "health_port")
	cfg.MetricsPort = loadInt(logger, "METRICS_PORT", cfg.MetricsPort, 1024, 65535, "metrics_port")

	cfg.RenderBaseURL = config.LoadEnvString("RENDER_API_URL", cfg.RenderBaseURL)
	cfg.RenderAPIKey = config.LoadEnvString("RENDER_API_KEY", "")
	cfg.CatalogPath = config.LoadEnvString("SOURCES_FILE", cfg.CatalogPath)
	cfg.DataDir = config.LoadEnvString("DATA_DIR", cfg.DataDir)

	return cfg
}

func loadString(logger *slog.Logger, key, def string, validator func(string) error, field string) string {
	result := config.LoadEnvWithFallback(key, def, validator)
	logFallback(logger, field, result)
	return result.Value.(string)
}

func loadDuration(logger *slog.Logger, key string, def time.Duration, field string) time.Duration {
	result := config.LoadEnvDuration(key, def, config.ValidatePositiveDuration)
	logFallback(logger, field, result)
	return result.Value.(time.Duration)
}

func loadInt(logger *slog.Logger, key string, def, min, max int, field string) int {
	result := config.LoadEnvInt(key, def, func(v int) error { return config.ValidateIntRange(v, min, max) })
	logFallback(logger, field, result)
	return result.Value.(int)
}

func logFallback(logger *slog.Logger, field string, result config.ConfigLoadResult) {
	if !result.FallbackApplied {
		return
	}
	metrics.RecordConfigFallback(field)
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
}

// Location resolves the configured timezone. The configuration is
// validated at load time, so failure here falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
