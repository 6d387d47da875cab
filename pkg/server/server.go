package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iddaa-lens/laundry/pkg/handlers/health"
	jobshandler "github.com/iddaa-lens/laundry/pkg/handlers/jobs"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/middleware"
)

// Options configure the status server
type Options struct {
	Port      string
	Scheduler *jobs.Scheduler
	StoreKind string
	// DBPool is the PostgreSQL store's pool, nil for other stores
	DBPool *pgxpool.Pool
	// Ticks reports the daemon's last tick, nil when there is none
	Ticks    health.TickReporter
	Gatherer prometheus.Gatherer
}

// Server is the daemon's status API
type Server struct {
	router   *http.ServeMux
	http     *http.Server
	port     string
	logger   *logger.Logger
	handlers struct {
		health *health.Handler
		jobs   *jobshandler.Handler
	}
}

// New creates a new server instance
func New(opts Options, log *logger.Logger) *Server {
	if opts.Port == "" {
		opts.Port = "8080"
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	server := &Server{
		router: http.NewServeMux(),
		port:   opts.Port,
		logger: log,
	}
	server.handlers.health = health.NewHandler(opts.Scheduler, opts.StoreKind, opts.DBPool, opts.Ticks, log)
	server.handlers.jobs = jobshandler.NewHandler(opts.Scheduler, log)
	server.setupRoutes(opts.Gatherer)

	server.http = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.HandleFunc("/health", middleware.CORS(s.handlers.health.HealthCheck))
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.router.HandleFunc("GET /api/jobs", middleware.CORS(s.handlers.jobs.List))
	s.router.HandleFunc("GET /api/jobs/{name}", middleware.CORS(s.handlers.jobs.Get))
	s.router.HandleFunc("POST /api/jobs/{name}/run", middleware.CORS(s.handlers.jobs.Run))
	s.router.HandleFunc("OPTIONS /api/jobs/{name}/run", middleware.CORS(s.handlers.jobs.Run))
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().
		Str("action", "server_start").
		Str("port", s.port).
		Msg("Starting status server")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start on port %s: %w", s.port, err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info().Str("action", "server_stop").Msg("Status server stopped")
	return nil
}
