package jobs

import "context"

// Task is periodic daemon work executed by the task manager, such as a scheduler tick
type Task interface {
	// Execute runs the task with the given context
	Execute(ctx context.Context) error

	// Name returns a human-readable name for the task
	Name() string

	// Schedule returns the cron schedule expression for this task
	// Format: "minute hour day month weekday" or "@every duration"
	// Examples: "* * * * *" (every minute), "@every 30s"
	Schedule() string
}

// TaskManager schedules tasks on a cron clock
type TaskManager interface {
	// Register adds a task to the manager
	Register(task Task) error

	// Start begins executing registered tasks according to their schedules
	Start()

	// Stop stops scheduling and waits for running tasks to finish
	Stop()

	// Tasks returns all registered tasks
	Tasks() []Task
}
