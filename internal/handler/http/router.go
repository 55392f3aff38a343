// Package http wires the public API: event listing and exports,
// aggregation progress, refresh triggering, and health probes.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"library-events/internal/handler/http/events"
	"library-events/internal/handler/http/requestid"
	"library-events/internal/observability/tracing"
	"library-events/internal/usecase/aggregate"
	"library-events/internal/usecase/query"
	"library-events/internal/usecase/refresh"
)

// maxBodyBytes caps request bodies. The API only accepts the empty
// refresh POST.
const maxBodyBytes = 4 << 10

// RouterConfig bundles everything the API surface depends on.
type RouterConfig struct {
	Logger       *slog.Logger
	Store        *EventStore
	Query        *query.Service
	Location     *time.Location
	ProgressPath string
	Job          *refresh.Job
	Window       func() aggregate.Window
}

// NewRouter assembles the mux and the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	events.NewHandler(cfg.Store, cfg.Query, cfg.Location).Register(mux)
	NewProgressHandler(cfg.ProgressPath).Register(mux)
	NewRefreshHandler(cfg.Job, cfg.Window).Register(mux)
	NewHealthHandler(cfg.Store).Register(mux)
	mux.Handle("GET /metrics", MetricsHandler())

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		Logging(logger),
		Recover(logger),
		MetricsMiddleware,
		LimitRequestBody(maxBodyBytes),
	)
}
