package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

// Store loads and saves the whole ordered job collection
type Store interface {
	Load(ctx context.Context) ([]*models.Job, error)
	Save(ctx context.Context, jobs []*models.Job) error
}

// Recorder receives the outcome of every job run
type Recorder interface {
	RecordRun(job string, items int, duration time.Duration, err error)
}

// RunResult is the outcome of one job within a request
type RunResult struct {
	Job      string        `json:"job"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Report collects the results of one run request, in execution order
type Report struct {
	RunID     string      `json:"runId"`
	Request   string      `json:"request"`
	StartedAt time.Time   `json:"startedAt"`
	Results   []RunResult `json:"results"`
}

// Failed returns the results of jobs that did not complete
func (r *Report) Failed() []RunResult {
	var failed []RunResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Succeeded counts jobs that completed
func (r *Report) Succeeded() int {
	return len(r.Results) - len(r.Failed())
}

// Options tune a Scheduler
type Options struct {
	// Timeout bounds each job's connector calls; zero disables it
	Timeout  time.Duration
	Now      func() time.Time
	Recorder Recorder
	Logger   *logger.Logger
}

// Scheduler owns the job registry, the connector catalog and the store, and
// runs requested or due jobs one at a time
type Scheduler struct {
	// runMu keeps execution strictly sequential; mu guards the registry
	runMu sync.Mutex
	mu    sync.Mutex

	registry *Registry
	catalog  *connectors.Catalog
	store    Store
	pipeline *Pipeline
	recorder Recorder
	logger   *logger.Logger

	// Now is the scheduler's clock
	Now func() time.Time
}

// NewScheduler creates a scheduler with an empty registry; call Load to fill it
func NewScheduler(catalog *connectors.Catalog, store Store, opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = logger.New("scheduler")
	}
	s := &Scheduler{
		registry: NewRegistry(nil),
		catalog:  catalog,
		store:    store,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		Now:      opts.Now,
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	s.pipeline = NewPipeline(catalog, opts.Timeout, func() time.Time { return s.Now() }, opts.Logger)
	return s
}

// Catalog returns the connector catalog jobs are resolved against
func (s *Scheduler) Catalog() *connectors.Catalog {
	return s.catalog
}

// Load replaces the registry with the store's contents
func (s *Scheduler) Load(ctx context.Context) error {
	jobs, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = NewRegistry(jobs)

	s.logger.Debug().
		Str("action", "jobs_loaded").
		Int("job_count", s.registry.Len()).
		Msg("Loaded jobs from store")
	return nil
}

// persist writes the registry; callers hold mu
func (s *Scheduler) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.registry.All()); err != nil {
		s.logger.Error().
			Err(err).
			Str("action", "persist_failed").
			Msg("Failed to save jobs")
		return &PersistenceError{Err: err}
	}
	return nil
}

// Jobs returns a deep copy of every job in registry order
func (s *Scheduler) Jobs() []*models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Snapshot()
}

// Get returns a copy of the named job
func (s *Scheduler) Get(name string) (*models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.registry.Get(name)
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Validate checks a job before it is stored: name, schedule, bound connectors
// and after-job links
func (s *Scheduler) Validate(job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate(job)
}

func (s *Scheduler) validate(job *models.Job) error {
	if job.Name == utils.ReservedJobName {
		return &ValidationError{Field: "name", Value: job.Name, Reason: "the name is reserved"}
	}
	if !utils.IsValidJobName(job.Name) {
		return &ValidationError{Field: "name", Value: job.Name, Reason: "names are lowercase letters, digits and hyphens, at most 32 characters"}
	}
	if err := job.Schedule.Validate(); err != nil {
		return &ValidationError{Field: "schedule", Value: job.Schedule.String(), Reason: err.Error()}
	}
	for _, mode := range []models.Mode{models.ModeInput, models.ModeOutput} {
		instance := job.Connector(mode)
		if instance == nil {
			continue
		}
		if err := s.catalog.ValidateInstance(instance, mode); err != nil {
			return &ValidationError{Field: string(mode), Value: instance.Type, Reason: err.Error()}
		}
	}
	return CheckChain(s.registry.All(), job.Name, job.Schedule)
}

// Upsert creates job or replaces the job with the same name, then persists
func (s *Scheduler) Upsert(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(job); err != nil {
		return err
	}
	created := s.registry.Put(job.Clone())

	s.logger.Info().
		Str("action", "job_saved").
		Str("job_name", job.Name).
		Bool("created", created).
		Msg("Saved job")
	return s.persist(ctx)
}

// Delete removes a job and everything its connectors stored for it, then persists
func (s *Scheduler) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.registry.Get(name)
	if !ok {
		return &NotFoundError{Name: name}
	}

	var result *multierror.Error
	for _, mode := range []models.Mode{models.ModeInput, models.ModeOutput} {
		instance := job.Connector(mode)
		if instance == nil {
			continue
		}
		conn, ok := s.catalog.Get(instance.Type)
		if !ok {
			continue
		}
		owner, ok := conn.(connectors.ArtifactOwner)
		if !ok {
			continue
		}
		cfg := connectors.Config{Job: job.Name, Settings: instance.Settings.Clone()}
		if err := owner.RemoveArtifacts(ctx, cfg); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to remove %s artifacts: %w", mode, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	s.registry.Delete(job.Name)
	s.logger.Info().
		Str("action", "job_destroyed").
		Str("job_name", job.Name).
		Msg("Destroyed job")
	return s.persist(ctx)
}

// Run executes a request: "all" or a single job name
func (s *Scheduler) Run(ctx context.Context, request string) (*Report, error) {
	if strings.EqualFold(strings.TrimSpace(request), utils.ReservedJobName) {
		return s.RunAll(ctx)
	}
	return s.RunOne(ctx, request)
}

// RunOne runs a job followed by every job chained after it
func (s *Scheduler) RunOne(ctx context.Context, name string) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx, s.newReport(name), name)
}

// RunAll runs every job that does not follow another job, each with its chain
func (s *Scheduler) RunAll(ctx context.Context) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx, s.newReport(utils.ReservedJobName), utils.ReservedJobName)
}

// Tick runs every job whose schedule fires now, in registry order, each with its chain.
// A cyclic chain under one due job is reported and the remaining due jobs still run.
func (s *Scheduler) Tick(ctx context.Context) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	due := Due(s.registry.All(), s.Now())
	names := make([]string, len(due))
	for i, job := range due {
		names[i] = job.Name
	}
	s.mu.Unlock()

	report := s.newReport("tick")
	log := s.logger.WithRequestID(report.RunID)
	if len(names) == 0 {
		log.Info().Str("action", "tick").Msg("No jobs to run.")
		return report, nil
	}

	var result *multierror.Error
	for _, name := range names {
		if _, err := s.run(ctx, report, name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return report, result.ErrorOrNil()
}

func (s *Scheduler) newReport(request string) *Report {
	return &Report{RunID: uuid.New().String(), Request: request, StartedAt: s.Now()}
}

// run resolves request and executes the sequence, appending to report
func (s *Scheduler) run(ctx context.Context, report *Report, request string) (*Report, error) {
	s.mu.Lock()
	sequence, err := Resolve(s.registry.All(), request)
	var work []*models.Job
	if err == nil {
		work = make([]*models.Job, len(sequence))
		for i, job := range sequence {
			work[i] = job.Clone()
		}
	}
	s.mu.Unlock()
	if err != nil {
		return report, err
	}

	log := s.logger.WithRequestID(report.RunID)
	var result *multierror.Error
	for _, job := range work {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log.LogJobStart(job.Name, job.Schedule.String())
		start := time.Now()
		items, runErr := s.pipeline.Execute(ctx, job)
		duration := time.Since(start)

		report.Results = append(report.Results, RunResult{Job: job.Name, Items: items, Duration: duration, Err: runErr})
		if s.recorder != nil {
			s.recorder.RecordRun(job.Name, items, duration, runErr)
		}
		if runErr != nil {
			continue
		}

		log.LogJobComplete(job.Name, items, duration)
		if err := s.commit(ctx, job); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return report, result.ErrorOrNil()
}

// commit stores a successfully run job and persists the whole registry
func (s *Scheduler) commit(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.registry.Get(job.Name)
	if !ok {
		// destroyed while running
		return nil
	}
	current.LastRun = job.LastRun
	if current.Input != nil && job.Input != nil && current.Input.Type == job.Input.Type {
		current.Input.Settings = job.Input.Settings
	}
	if current.Output != nil && job.Output != nil && current.Output.Type == job.Output.Type {
		current.Output.Settings = job.Output.Settings
	}
	return s.persist(ctx)
}

// Describe renders the job list the way `laundry list` prints it
func (s *Scheduler) Describe() string {
	jobs := s.Jobs()
	if len(jobs) == 0 {
		return `There are no jobs configured. Use "laundry create" to make one.`
	}

	var b strings.Builder
	b.WriteString("Current jobs:\n")
	for _, job := range jobs {
		fmt.Fprintf(&b, "%s %s\n", job.Name, job.Schedule.Describe())
	}
	return b.String()
}

// IsPersistence reports whether err carries a store failure
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
