// Package connectortest provides in-memory connectors for tests
package connectortest

import (
	"context"
	"sync"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/models"
)

// Family is an abstract connector type: it declares settings but cannot be bound
type Family struct {
	ID             string
	Parent         string
	Label          string
	InputSettings  []connectors.Setting
	OutputSettings []connectors.Setting
}

func (f *Family) TypeID() string       { return f.ID }
func (f *Family) ParentTypeID() string { return f.Parent }
func (f *Family) Name() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

func (f *Family) Input() connectors.Capability {
	return connectors.Capability{Description: f.ID + " input", Settings: f.InputSettings}
}

func (f *Family) Output() connectors.Capability {
	return connectors.Capability{Description: f.ID + " output", Settings: f.OutputSettings}
}

// Connector is a bindable connector serving both modes. Items, errors and
// recorded calls are keyed by job name.
type Connector struct {
	Family

	Items     map[string][]models.Item
	FetchErr  map[string]error
	PushErr   map[string]error
	AuthErr   map[string]error
	Token     string
	FetchHook func(ctx context.Context, cfg connectors.Config) error

	mu      sync.Mutex
	calls   []string
	pushed  map[string][]models.Item
	removed []string
}

// New creates a bindable fake connector
func New(id, parent string) *Connector {
	return &Connector{
		Family:   Family{ID: id, Parent: parent},
		Items:    make(map[string][]models.Item),
		FetchErr: make(map[string]error),
		PushErr:  make(map[string]error),
		AuthErr:  make(map[string]error),
		pushed:   make(map[string][]models.Item),
	}
}

func (c *Connector) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *Connector) Authorize(_ context.Context, cfg connectors.Config) error {
	c.record("authorize:" + cfg.Job)
	if err := c.AuthErr[cfg.Job]; err != nil {
		return err
	}
	if c.Token != "" {
		cfg.Settings[connectors.TokenSetting] = c.Token
	}
	return nil
}

func (c *Connector) Fetch(ctx context.Context, cfg connectors.Config) ([]models.Item, error) {
	c.record("fetch:" + cfg.Job)
	if c.FetchHook != nil {
		if err := c.FetchHook(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if err := c.FetchErr[cfg.Job]; err != nil {
		return nil, err
	}
	return c.Items[cfg.Job], nil
}

func (c *Connector) Push(_ context.Context, items []models.Item, cfg connectors.Config) error {
	c.record("push:" + cfg.Job)
	if err := c.PushErr[cfg.Job]; err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed[cfg.Job] = append(c.pushed[cfg.Job], items...)
	return nil
}

func (c *Connector) RemoveArtifacts(_ context.Context, cfg connectors.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, cfg.Job)
	return nil
}

// Calls returns the recorded calls in order, e.g. "fetch:a", "push:a"
func (c *Connector) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Pushed returns the items pushed for job
func (c *Connector) Pushed(job string) []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Item(nil), c.pushed[job]...)
}

// Removed lists the jobs whose artifacts were removed
func (c *Connector) Removed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.removed...)
}
