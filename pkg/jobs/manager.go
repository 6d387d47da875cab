package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/iddaa-lens/laundry/pkg/logger"
)

// TaskManagerConfig holds configuration for the task manager
type TaskManagerConfig struct {
	// LockManager, when set, wraps every registered task in a GuardedTask
	LockManager LockManager
	Guard       *GuardConfig
	// Timeout bounds one execution of a task
	Timeout time.Duration
}

type cronTaskManager struct {
	cron    *cron.Cron
	tasks   []Task
	logger  *logger.Logger
	locks   LockManager
	guard   *GuardConfig
	timeout time.Duration
}

// NewTaskManager creates a new task manager
func NewTaskManager(config *TaskManagerConfig) TaskManager {
	if config == nil {
		config = &TaskManagerConfig{}
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Minute
	}
	return &cronTaskManager{
		cron:    cron.New(cron.WithLocation(time.Local)),
		tasks:   make([]Task, 0),
		logger:  logger.New("task-manager"),
		locks:   config.LockManager,
		guard:   config.Guard,
		timeout: config.Timeout,
	}
}

func (m *cronTaskManager) Register(task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	final := task
	if m.locks != nil {
		if _, guarded := task.(*GuardedTask); !guarded {
			final = NewGuardedTask(task, m.locks, m.guard)
		}
	}

	m.logger.Info().
		Str("action", "register_task").
		Str("task_name", final.Name()).
		Str("schedule", final.Schedule()).
		Bool("locking_enabled", m.locks != nil).
		Msg("Registering task")

	_, err := m.cron.AddFunc(final.Schedule(), func() {
		m.execute(final)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule task %s: %w", final.Name(), err)
	}

	m.tasks = append(m.tasks, final)
	return nil
}

func (m *cronTaskManager) execute(task Task) {
	taskLogger := m.logger.WithRequestID(uuid.New().String())

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	ctx = taskLogger.ToContext(ctx)

	start := time.Now()
	if err := task.Execute(ctx); err != nil {
		taskLogger.Error().
			Err(err).
			Str("action", "task_failed").
			Str("task_name", task.Name()).
			Dur("duration", time.Since(start)).
			Msg("Task execution failed")
		return
	}
	taskLogger.Debug().
		Str("action", "task_complete").
		Str("task_name", task.Name()).
		Dur("duration", time.Since(start)).
		Msg("Task completed")
}

func (m *cronTaskManager) Start() {
	m.logger.Info().
		Str("action", "start").
		Int("task_count", len(m.tasks)).
		Msg("Starting task manager")
	m.cron.Start()
}

func (m *cronTaskManager) Stop() {
	m.logger.Info().Str("action", "stop_initiated").Msg("Stopping task manager")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info().Str("action", "stopped").Msg("Task manager stopped")
}

func (m *cronTaskManager) Tasks() []Task {
	return append([]Task(nil), m.tasks...)
}
