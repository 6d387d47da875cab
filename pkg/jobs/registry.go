package jobs

import (
	"strings"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// Registry is the ordered in-memory collection of jobs. Names are unique
// under case-insensitive comparison.
type Registry struct {
	jobs  []*models.Job
	index map[string]int
}

// NewRegistry builds a registry from jobs in order. A later job whose name
// collides with an earlier one replaces it in place.
func NewRegistry(jobs []*models.Job) *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, job := range jobs {
		if job != nil {
			r.Put(job)
		}
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put stores job, editing in place when the name already exists. It reports
// whether the job was new.
func (r *Registry) Put(job *models.Job) bool {
	k := key(job.Name)
	if i, ok := r.index[k]; ok {
		r.jobs[i] = job
		return false
	}
	r.index[k] = len(r.jobs)
	r.jobs = append(r.jobs, job)
	return true
}

// Get finds a job by name, ignoring case
func (r *Registry) Get(name string) (*models.Job, bool) {
	i, ok := r.index[key(name)]
	if !ok {
		return nil, false
	}
	return r.jobs[i], true
}

// Delete removes a job by name and reports whether it existed
func (r *Registry) Delete(name string) bool {
	i, ok := r.index[key(name)]
	if !ok {
		return false
	}
	r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
	r.reindex()
	return true
}

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.jobs))
	for i, job := range r.jobs {
		r.index[key(job.Name)] = i
	}
}

// All returns the jobs in registry order. The slice is a copy; the jobs are not.
func (r *Registry) All() []*models.Job {
	return append([]*models.Job(nil), r.jobs...)
}

// Snapshot returns deep copies of every job in registry order
func (r *Registry) Snapshot() []*models.Job {
	snapshot := make([]*models.Job, len(r.jobs))
	for i, job := range r.jobs {
		snapshot[i] = job.Clone()
	}
	return snapshot
}

func (r *Registry) Len() int {
	return len(r.jobs)
}
