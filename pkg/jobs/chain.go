package jobs

import (
	"strings"

	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

// Resolve computes the execution order for a run request: a job name, or
// "all" for every job that does not follow another existing job. Jobs that
// follow an included job are spliced in directly after it, repeatedly, until
// a full pass adds nothing.
func Resolve(jobs []*models.Job, request string) ([]*models.Job, error) {
	var roots []*models.Job

	if strings.EqualFold(strings.TrimSpace(request), utils.ReservedJobName) {
		for _, job := range jobs {
			if job.Schedule.Kind == models.ScheduleAfter && find(jobs, job.Schedule.After) != nil {
				continue
			}
			roots = append(roots, job)
		}
	} else {
		job := find(jobs, request)
		if job == nil {
			return nil, &NotFoundError{Name: request}
		}
		if cycle := cycleThrough(jobs, job); cycle != nil {
			return nil, &CyclicScheduleError{Jobs: cycle}
		}
		roots = []*models.Job{job}
	}

	return expand(jobs, roots)
}

func expand(jobs, roots []*models.Job) ([]*models.Job, error) {
	sequence := append([]*models.Job(nil), roots...)
	included := make(map[*models.Job]bool, len(jobs))
	for _, job := range roots {
		included[job] = true
	}

	// every productive pass includes at least one job
	for pass := 0; pass <= len(jobs); pass++ {
		found := false
		for _, job := range jobs {
			if included[job] || job.Schedule.Kind != models.ScheduleAfter {
				continue
			}
			pos := position(sequence, job.Schedule.After)
			if pos < 0 {
				continue
			}
			sequence = insertAt(sequence, pos+1, job)
			included[job] = true
			found = true
		}
		if !found {
			return sequence, nil
		}
	}

	names := make([]string, len(sequence))
	for i, job := range sequence {
		names[i] = job.Name
	}
	return nil, &CyclicScheduleError{Jobs: names}
}

// CheckChain reports a CyclicScheduleError when giving job name the schedule
// would close a loop of after-job links
func CheckChain(jobs []*models.Job, name string, schedule models.Schedule) error {
	if schedule.Kind != models.ScheduleAfter {
		return nil
	}

	path := []string{name}
	seen := map[string]bool{key(name): true}
	target := schedule.After
	for {
		if strings.EqualFold(target, name) {
			return &CyclicScheduleError{Jobs: append(reverse(path), name)}
		}
		next := find(jobs, target)
		if next == nil || seen[key(next.Name)] {
			return nil
		}
		seen[key(next.Name)] = true
		path = append(path, next.Name)
		if next.Schedule.Kind != models.ScheduleAfter {
			return nil
		}
		target = next.Schedule.After
	}
}

// cycleThrough returns the loop start belongs to, in execution order, or nil
func cycleThrough(jobs []*models.Job, start *models.Job) []string {
	return cycleNames(CheckChain(jobs, start.Name, start.Schedule))
}

func cycleNames(err error) []string {
	if cycle, ok := err.(*CyclicScheduleError); ok {
		return cycle.Jobs
	}
	return nil
}

func find(jobs []*models.Job, name string) *models.Job {
	for _, job := range jobs {
		if job.Is(name) {
			return job
		}
	}
	return nil
}

func position(sequence []*models.Job, name string) int {
	for i, job := range sequence {
		if job.Is(name) {
			return i
		}
	}
	return -1
}

func insertAt(sequence []*models.Job, i int, job *models.Job) []*models.Job {
	sequence = append(sequence, nil)
	copy(sequence[i+1:], sequence[i:])
	sequence[i] = job
	return sequence
}

// reverse turns a walk up the predecessors into execution order, keeping the start first
func reverse(path []string) []string {
	out := []string{path[0]}
	for i := len(path) - 1; i > 0; i-- {
		out = append(out, path[i])
	}
	return out
}
