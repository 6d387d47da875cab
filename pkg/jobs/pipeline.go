package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
)

// Pipeline runs one job: configure, authorize, fetch, push
type Pipeline struct {
	catalog *connectors.Catalog
	timeout time.Duration
	now     func() time.Time
	logger  *logger.Logger
}

// NewPipeline creates a pipeline. A zero timeout lets connector calls run unbounded.
func NewPipeline(catalog *connectors.Catalog, timeout time.Duration, now func() time.Time, log *logger.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.New("pipeline")
	}
	return &Pipeline{catalog: catalog, timeout: timeout, now: now, logger: log}
}

type binding struct {
	mode     models.Mode
	conn     connectors.Connector
	instance *models.ConnectorInstance
}

// Execute runs job in place. On success it sets LastRun and keeps any settings
// the connectors rewrote while authorizing; on failure the job is left as it was
// and a *ConnectorError is returned.
func (p *Pipeline) Execute(ctx context.Context, job *models.Job) (int, error) {
	log := p.logger.WithJob(job.Name)

	fetcher, pusher, err := p.configure(job)
	if err != nil {
		return 0, p.fail(log, job.Name, PhaseConfigure, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	input := connectors.Config{Job: job.Name, Settings: job.Input.Settings.Clone()}
	output := connectors.Config{Job: job.Name, Settings: job.Output.Settings.Clone()}

	for _, side := range []struct {
		b   binding
		cfg connectors.Config
	}{
		{binding{models.ModeInput, fetcher, job.Input}, input},
		{binding{models.ModeOutput, pusher, job.Output}, output},
	} {
		authorizer, ok := side.b.conn.(connectors.Authorizer)
		if !ok {
			continue
		}
		log.LogPhase(job.Name, string(PhaseAuthorize), side.b.conn.Name())
		if err := authorizer.Authorize(ctx, side.cfg); err != nil {
			return 0, p.fail(log, job.Name, PhaseAuthorize, fmt.Errorf("%s %s: %w", side.b.mode, side.b.instance.Type, err))
		}
	}

	log.LogPhase(job.Name, string(PhaseFetch), fetcher.Name())
	items, err := fetcher.Fetch(ctx, input)
	if err != nil {
		return 0, p.fail(log, job.Name, PhaseFetch, err)
	}

	log.LogPhase(job.Name, string(PhasePush), pusher.Name())
	if err := pusher.Push(ctx, items, output); err != nil {
		return 0, p.fail(log, job.Name, PhasePush, err)
	}

	job.Input.Settings = input.Settings
	job.Output.Settings = output.Settings
	now := p.now()
	job.LastRun = &now
	return len(items), nil
}

func (p *Pipeline) configure(job *models.Job) (connectors.Fetcher, connectors.Pusher, error) {
	if job.Input == nil {
		return nil, nil, fmt.Errorf("%w: no input", ErrMissingConnector)
	}
	if job.Output == nil {
		return nil, nil, fmt.Errorf("%w: no output", ErrMissingConnector)
	}
	for _, instance := range []*models.ConnectorInstance{job.Input, job.Output} {
		if _, ok := p.catalog.Get(instance.Type); !ok {
			return nil, nil, fmt.Errorf("%w %q", ErrUnknownConnectorType, instance.Type)
		}
	}
	if err := p.catalog.ValidateInstance(job.Input, models.ModeInput); err != nil {
		return nil, nil, err
	}
	if err := p.catalog.ValidateInstance(job.Output, models.ModeOutput); err != nil {
		return nil, nil, err
	}

	fetcher, err := p.catalog.Fetcher(job.Input.Type)
	if err != nil {
		return nil, nil, err
	}
	pusher, err := p.catalog.Pusher(job.Output.Type)
	if err != nil {
		return nil, nil, err
	}
	return fetcher, pusher, nil
}

func (p *Pipeline) fail(log *logger.Logger, job string, phase Phase, err error) error {
	log.Error().
		Err(err).
		Str("action", "phase_failed").
		Str("phase", string(phase)).
		Msg(job + " - error")
	return &ConnectorError{Job: job, Phase: phase, Err: err}
}
