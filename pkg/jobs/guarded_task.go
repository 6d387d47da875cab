package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/iddaa-lens/laundry/pkg/logger"
)

// GuardedTask runs a task only while holding its lock, so two daemons sharing
// a store never tick at the same time
type GuardedTask struct {
	task        Task
	lockManager LockManager
	logger      *logger.Logger

	lockTimeout  time.Duration
	skipIfLocked bool
}

// GuardConfig holds configuration for the lock guard around a task
type GuardConfig struct {
	LockTimeout  time.Duration // How long to wait for the lock
	SkipIfLocked bool          // Skip the run instead of failing when the lock is busy
}

// DefaultGuardConfig skips a run immediately when another instance holds the lock
func DefaultGuardConfig() *GuardConfig {
	return &GuardConfig{
		LockTimeout:  0,
		SkipIfLocked: true,
	}
}

// NewGuardedTask wraps task with lock acquisition
func NewGuardedTask(task Task, lockManager LockManager, config *GuardConfig) *GuardedTask {
	if config == nil {
		config = DefaultGuardConfig()
	}

	return &GuardedTask{
		task:         task,
		lockManager:  lockManager,
		logger:       logger.New("guarded-task"),
		lockTimeout:  config.LockTimeout,
		skipIfLocked: config.SkipIfLocked,
	}
}

func (g *GuardedTask) Name() string {
	return g.task.Name()
}

func (g *GuardedTask) Schedule() string {
	return g.task.Schedule()
}

// Execute runs the wrapped task under its lock
func (g *GuardedTask) Execute(ctx context.Context) error {
	name := g.task.Name()
	guard := NewLockGuard(g.lockManager, name)

	var acquired bool
	var err error
	if g.lockTimeout > 0 {
		acquired, err = guard.AcquireWithTimeout(ctx, g.lockTimeout)
	} else {
		acquired, err = guard.Acquire(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock for task %s: %w", name, err)
	}

	if !acquired {
		if !g.skipIfLocked {
			return fmt.Errorf("could not acquire lock for task %s", name)
		}
		g.logger.Info().
			Str("task_name", name).
			Str("action", "task_skipped_locked").
			Msg("Task skipped - another instance is running")
		return nil
	}

	defer func() {
		// the run context may already be done; release on a fresh one
		if releaseErr := guard.Release(context.Background()); releaseErr != nil {
			g.logger.Error().
				Err(releaseErr).
				Str("task_name", name).
				Str("action", "lock_release_error").
				Msg("Failed to release lock")
		}
	}()

	return g.task.Execute(ctx)
}
