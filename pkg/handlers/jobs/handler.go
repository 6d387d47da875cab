package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/models/api"
)

type Handler struct {
	scheduler *jobs.Scheduler
	logger    *logger.Logger
}

func NewHandler(scheduler *jobs.Scheduler, logger *logger.Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// List handles GET /api/jobs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	now := h.scheduler.Now()
	all := h.scheduler.Jobs()

	response := make([]api.JobResponse, 0, len(all))
	for _, job := range all {
		response = append(response, toResponse(job, now))
	}

	h.write(w, http.StatusOK, api.Response{
		Success: true,
		Data:    response,
		Meta: map[string]any{
			"total": len(response),
		},
	})
}

// Get handles GET /api/jobs/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	job, ok := h.scheduler.Get(r.PathValue("name"))
	if !ok {
		h.write(w, http.StatusNotFound, api.Response{Message: "job not found"})
		return
	}
	h.write(w, http.StatusOK, api.Response{Success: true, Data: toResponse(job, h.scheduler.Now())})
}

// Run handles POST /api/jobs/{name}/run; the name "all" runs every chain.
// The request blocks until the run is over.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	report, err := h.scheduler.Run(r.Context(), name)

	status := http.StatusOK
	var cycle *jobs.CyclicScheduleError
	switch {
	case err == nil:
	case jobs.IsNotFound(err):
		h.write(w, http.StatusNotFound, api.Response{Message: err.Error()})
		return
	case errors.As(err, &cycle):
		h.write(w, http.StatusConflict, api.Response{Message: err.Error()})
		return
	default:
		h.logger.Error().
			Err(err).
			Str("action", "api_run_failed").
			Str("job_name", name).
			Msg("Run request finished with errors")
		status = http.StatusInternalServerError
	}

	response := api.RunResponse{RunID: report.RunID, Request: report.Request, Results: []api.RunResultResponse{}}
	for _, result := range report.Results {
		item := api.RunResultResponse{
			Job:        result.Job,
			Items:      result.Items,
			DurationMs: result.Duration.Milliseconds(),
		}
		if result.Err != nil {
			msg := result.Err.Error()
			item.Error = &msg
		}
		response.Results = append(response.Results, item)
	}

	resp := api.Response{Success: err == nil && len(report.Failed()) == 0, Data: response}
	if err != nil {
		resp.Message = err.Error()
	}
	h.write(w, status, resp)
}

func (h *Handler) write(w http.ResponseWriter, status int, body api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode jobs response")
	}
}

func toResponse(job *models.Job, now time.Time) api.JobResponse {
	response := api.JobResponse{
		Name:        job.Name,
		Schedule:    job.Schedule,
		Description: job.Schedule.Describe(),
		LastRun:     job.LastRun,
		Due:         jobs.IsDue(job, now),
	}
	if job.Input != nil {
		response.Input = job.Input.Type
	}
	if job.Output != nil {
		response.Output = job.Output.Type
	}
	return response
}
