// Package app wires configuration into a ready scheduler for the binaries.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/iddaa-lens/laundry/internal/config"
	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/database"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/metrics"
	"github.com/iddaa-lens/laundry/pkg/store"
)

// App holds the components shared by the CLI and the daemon
type App struct {
	Config    *config.Config
	Store     store.Store
	Scheduler *jobs.Scheduler
	Registry  *prometheus.Registry
	Logger    *logger.Logger
}

// Dependencies lets tests and callers swap the outside world
type Dependencies struct {
	Fs         afero.Fs
	HTTPClient *http.Client
	Connect    database.Connector
	Now        func() time.Time
}

// New opens the configured store, builds the connector catalog and loads the jobs
func New(ctx context.Context, cfg *config.Config, deps Dependencies) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	log := logger.New("laundry")

	if cfg.Store.Kind != store.KindPostgres {
		if err := deps.Fs.MkdirAll(cfg.Home, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create home directory %s: %w", cfg.Home, err)
		}
	}

	opts := cfg.StoreOptions()
	opts.Fs = deps.Fs
	st, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Kind, err)
	}

	catalog := connectors.Builtin(connectors.Options{
		Fs:         deps.Fs,
		HomeDir:    cfg.Home,
		HTTPClient: deps.HTTPClient,
		Connect:    deps.Connect,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scheduler := jobs.NewScheduler(catalog, st, jobs.Options{
		Timeout:  cfg.JobTimeout(),
		Now:      deps.Now,
		Recorder: metrics.NewRecorder(registry),
		Logger:   logger.New("scheduler"),
	})
	if err := scheduler.Load(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	log.Debug().
		Str("action", "app_ready").
		Str("store", cfg.Store.Kind).
		Int("jobs", len(scheduler.Jobs())).
		Msg("Loaded jobs")

	return &App{
		Config:    cfg,
		Store:     st,
		Scheduler: scheduler,
		Registry:  registry,
		Logger:    log,
	}, nil
}

// Pool returns the PostgreSQL pool behind the store, or nil for local stores
func (a *App) Pool() *pgxpool.Pool {
	if pg, ok := a.Store.(*store.PostgresStore); ok {
		return pg.Pool()
	}
	return nil
}

// LockManager picks advisory locks when the store is shared through PostgreSQL
func (a *App) LockManager() jobs.LockManager {
	if pool := a.Pool(); pool != nil {
		return jobs.NewPostgreSQLLockManager(pool)
	}
	return jobs.NewLocalLockManager()
}

func (a *App) Close() error {
	return a.Store.Close()
}
