package api

import (
	"log/slog"
	"net/http"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/telemetry/health"
)

// RouterOptions carries the optional collaborators wired into the router.
type RouterOptions struct {
	// Logger receives access logs and panic reports. Defaults to
	// slog.Default.
	Logger *slog.Logger

	// HealthChecker backs /healthz and /readyz. Nil skips registration.
	HealthChecker *health.Checker

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// Version, Commit, and BuildTime populate /version.
	Version   string
	Commit    string
	BuildTime string
}

// NewRouter assembles the full HTTP handler: API routes, health and version
// endpoints, metrics, and the middleware chain. Requests pass through
// recovery, logging, request ID, CORS, and timeout middleware in that order.
func NewRouter(orch Service, cfg config.ServerConfig, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handlers := NewHandlers(orch, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/generate", handlers.Generate)
	mux.HandleFunc("/v1/providers", handlers.Providers)
	mux.HandleFunc("/v1/cache/clear", handlers.ClearCache)

	if opts.HealthChecker != nil {
		health.Register(mux, opts.HealthChecker, opts.Version, opts.Commit, opts.BuildTime)
	}
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics)
	}

	// Innermost first; the last wrap runs first at request time.
	var handler http.Handler = mux
	handler = TimeoutMiddleware(cfg.RequestTimeout)(handler)
	handler = CORSMiddleware(cfg.CORS)(handler)
	handler = RequestIDMiddleware(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RecoveryMiddleware(logger)(handler)

	return handler
}
