package jobs

import (
	"time"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// IsDue reports whether the job's own schedule fires at now. Manual and
// after-job schedules never fire here.
func IsDue(job *models.Job, now time.Time) bool {
	switch job.Schedule.Kind {
	case models.ScheduleInterval:
		if job.LastRun == nil {
			return true
		}
		return int(now.Sub(*job.LastRun).Minutes()) >= job.Schedule.Minutes

	case models.ScheduleDaily:
		minuteOfDay := now.Hour()*60 + now.Minute()
		if minuteOfDay < job.Schedule.Hour*60+job.Schedule.Minute {
			return false
		}
		if job.LastRun == nil {
			return true
		}
		return int(now.Sub(*job.LastRun).Hours()/24) >= 1
	}
	return false
}

// Due returns the jobs whose schedule fires at now, in registry order
func Due(jobs []*models.Job, now time.Time) []*models.Job {
	var due []*models.Job
	for _, job := range jobs {
		if IsDue(job, now) {
			due = append(due, job)
		}
	}
	return due
}
