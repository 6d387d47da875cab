// Package metrics exports job run counters for the daemon's /metrics endpoint
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Recorder counts job runs, their duration and the items they moved
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
}

// NewRecorder registers the laundry collectors on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "laundry_job_runs_total",
			Help: "Job runs by outcome",
		}, []string{"job", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "laundry_job_run_duration_seconds",
			Help:    "Time spent running a job, connector calls included",
			Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"job"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "laundry_job_items_total",
			Help: "Items fetched and pushed by successful runs",
		}, []string{"job"}),
	}
}

// RecordRun implements jobs.Recorder
func (r *Recorder) RecordRun(job string, items int, duration time.Duration, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	r.runs.WithLabelValues(job, result).Inc()
	r.duration.WithLabelValues(job).Observe(duration.Seconds())
	if err == nil {
		r.items.WithLabelValues(job).Add(float64(items))
	}
}
