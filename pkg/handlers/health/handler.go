package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iddaa-lens/laundry/pkg/database/pool"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models/api"
)

// TickReporter exposes the daemon's most recent tick
type TickReporter interface {
	LastReport() *jobs.Report
}

// Handler handles health check requests
type Handler struct {
	scheduler *jobs.Scheduler
	storeKind string
	dbPool    *pgxpool.Pool
	ticks     TickReporter
	logger    *logger.Logger
}

// NewHandler creates a new health handler. dbPool and ticks may be nil.
func NewHandler(scheduler *jobs.Scheduler, storeKind string, dbPool *pgxpool.Pool, ticks TickReporter, log *logger.Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		storeKind: storeKind,
		dbPool:    dbPool,
		ticks:     ticks,
		logger:    log,
	}
}

// HealthCheck handles the /health endpoint
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	response := api.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Jobs:      len(h.scheduler.Jobs()),
		Store:     h.storeKind,
	}
	statusCode := http.StatusOK

	if h.dbPool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := h.dbPool.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.Warn().
				Err(err).
				Str("action", "health_db_ping_failed").
				Msg("Store database is unreachable")
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
		stats := pool.GetStats(h.dbPool)
		response.Database = &api.PoolStats{
			AcquiredConns: stats.AcquiredConns,
			IdleConns:     stats.IdleConns,
			TotalConns:    stats.TotalConns,
			MaxConns:      stats.MaxConns,
		}
	}

	if h.ticks != nil {
		if report := h.ticks.LastReport(); report != nil {
			response.LastTick = &api.TickSummary{
				RunID:     report.RunID,
				StartedAt: report.StartedAt,
				Ran:       len(report.Results),
				Failed:    len(report.Failed()),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "health_check_failed").
			Str("endpoint", "/health").
			Msg("Failed to encode health response")
		return
	}

	h.logger.Debug().
		Str("action", "health_check").
		Str("endpoint", "/health").
		Str("method", r.Method).
		Str("remote_addr", r.RemoteAddr).
		Int("status_code", statusCode).
		Dur("duration", time.Since(start)).
		Msg("Health check completed")
}
