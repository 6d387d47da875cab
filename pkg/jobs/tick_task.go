package jobs

import (
	"context"
	"sync"

	"github.com/iddaa-lens/laundry/pkg/logger"
)

// TickTask runs Scheduler.Tick on the daemon's cron clock
type TickTask struct {
	scheduler *Scheduler
	schedule  string
	reload    bool

	mu   sync.Mutex
	last *Report
}

// NewTickTask creates the periodic tick. With reload set the registry is
// re-read from the store before each tick so edits made by the CLI are seen.
func NewTickTask(scheduler *Scheduler, schedule string, reload bool) *TickTask {
	return &TickTask{scheduler: scheduler, schedule: schedule, reload: reload}
}

func (t *TickTask) Name() string { return "laundry_tick" }

func (t *TickTask) Schedule() string { return t.schedule }

func (t *TickTask) Execute(ctx context.Context) error {
	if t.reload {
		if err := t.scheduler.Load(ctx); err != nil {
			return err
		}
	}

	report, err := t.scheduler.Tick(ctx)
	t.mu.Lock()
	t.last = report
	t.mu.Unlock()

	log := logger.WithContext(ctx, "tick")
	log.Info().
		Str("action", "tick_complete").
		Str("run_id", report.RunID).
		Int("job_count", len(report.Results)).
		Int("failed_count", len(report.Failed())).
		Msg("Tick finished")
	return err
}

// LastReport returns the report of the most recent tick, or nil before the first one
func (t *TickTask) LastReport() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
