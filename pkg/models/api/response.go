package api

import (
	"time"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Jobs      int          `json:"jobs"`
	Store     string       `json:"store"`
	Database  *PoolStats   `json:"database,omitempty"`
	LastTick  *TickSummary `json:"last_tick,omitempty"`
}

// PoolStats mirrors the PostgreSQL store's connection pool usage
type PoolStats struct {
	AcquiredConns int32 `json:"acquired_conns"`
	IdleConns     int32 `json:"idle_conns"`
	TotalConns    int32 `json:"total_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// TickSummary describes the daemon's most recent tick
type TickSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Ran       int       `json:"ran"`
	Failed    int       `json:"failed"`
}

// JobResponse represents a job in API responses. Settings are left out since
// they carry credentials.
type JobResponse struct {
	Name        string          `json:"name"`
	Input       string          `json:"input,omitempty"`
	Output      string          `json:"output,omitempty"`
	Schedule    models.Schedule `json:"schedule"`
	Description string          `json:"description"`
	LastRun     *time.Time      `json:"last_run,omitempty"`
	Due         bool            `json:"due"`
}

// RunResultResponse is the outcome of one job in a run request
type RunResultResponse struct {
	Job        string  `json:"job"`
	Items      int     `json:"items"`
	DurationMs int64   `json:"duration_ms"`
	Error      *string `json:"error,omitempty"`
}

// RunResponse is the outcome of a run request
type RunResponse struct {
	RunID   string              `json:"run_id"`
	Request string              `json:"request"`
	Results []RunResultResponse `json:"results"`
}

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}
