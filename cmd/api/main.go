package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/internal/config"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/server"
)

// The api service serves job status and on-demand runs without ticking.
// Pair it with cmd/cron, or with `laundry tick` from the system cron.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Environment)
	log := logger.New("laundry-api")

	a, err := app.New(context.Background(), cfg, app.Dependencies{})
	if err != nil {
		log.Fatal().
			Err(err).
			Str("action", "app_creation_failed").
			Msg("Failed to load jobs")
	}
	defer a.Close()

	srv := server.New(server.Options{
		Port:      cfg.Server.Port,
		Scheduler: a.Scheduler,
		StoreKind: cfg.Store.Kind,
		DBPool:    a.Pool(),
		Gatherer:  a.Registry,
	}, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("action", "shutdown_failed").Msg("Server shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal().
			Err(err).
			Str("action", "server_failed").
			Msg("Server failed to start")
	}
}
