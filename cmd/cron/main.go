package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/internal/config"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/server"
)

func main() {
	once := flag.Bool("once", false, "Run one tick and exit")
	flag.Parse()

	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Environment)
	log := logger.New("laundry-cron")

	a, err := app.New(context.Background(), cfg, app.Dependencies{})
	if err != nil {
		log.WithError(err).Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	locks := a.LockManager()
	// The store is re-read before every tick so jobs edited with the CLI are picked up
	tick := jobs.NewTickTask(a.Scheduler, cfg.Tick.Schedule, true)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		log.Info().Str("action", "tick_once").Msg("Running one tick...")
		if err := jobs.NewGuardedTask(tick, locks, nil).Execute(ctx); err != nil {
			log.WithError(err).Fatalf("Tick failed: %v", err)
		}
		log.Info().Str("action", "tick_once").Msg("Tick completed")
		return
	}

	manager := jobs.NewTaskManager(&jobs.TaskManagerConfig{
		LockManager: locks,
		Guard:       jobs.DefaultGuardConfig(),
	})
	if err := manager.Register(tick); err != nil {
		log.WithError(err).Fatalf("Failed to register tick: %v", err)
	}

	var srv *server.Server
	if !cfg.Server.Disabled {
		srv = server.New(server.Options{
			Port:      cfg.Server.Port,
			Scheduler: a.Scheduler,
			StoreKind: cfg.Store.Kind,
			DBPool:    a.Pool(),
			Ticks:     tick,
			Gatherer:  a.Registry,
		}, logger.New("laundry-status"))

		go func() {
			if err := srv.Start(); err != nil {
				log.WithError(err).Fatalf("Status server failed: %v", err)
			}
		}()
	}

	manager.Start()
	log.Info().
		Str("action", "cron_started").
		Str("schedule", cfg.Tick.Schedule).
		Str("store", cfg.Store.Kind).
		Int("jobs", len(a.Scheduler.Jobs())).
		Msg("Laundry daemon started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Str("action", "cron_stopping").Msg("Shutting down laundry daemon...")
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error().Msg("Status server shutdown failed")
		}
		cancel()
	}
	manager.Stop()
	log.Info().Str("action", "cron_stopped").Msg("Laundry daemon stopped")
}
