// Package connectors defines the contract between the scheduler and the
// pluggable sources and sinks a job is built from, plus the catalog of
// connector types available to the wizard.
package connectors

import (
	"context"
	"errors"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// TokenSetting is the implicit setting every connector may carry
const TokenSetting = "token"

// ErrInvalidAnswer is returned by a PostCheck that rejects a field value
var ErrInvalidAnswer = errors.New("invalid answer")

// Connector identifies a connector type. TypeIDs are dot-separated for
// readability; the parent link is explicit and is the only thing inheritance follows.
type Connector interface {
	TypeID() string
	ParentTypeID() string
	Name() string
}

// SupportsInput is implemented by connector types with input settings
type SupportsInput interface {
	Connector
	Input() Capability
}

// SupportsOutput is implemented by connector types with output settings
type SupportsOutput interface {
	Connector
	Output() Capability
}

// Fetcher is a connector type a job can use as its input
type Fetcher interface {
	SupportsInput
	Fetch(ctx context.Context, cfg Config) ([]models.Item, error)
}

// Pusher is a connector type a job can use as its output
type Pusher interface {
	SupportsOutput
	Push(ctx context.Context, items []models.Item, cfg Config) error
}

// Authorizer runs before fetch/push, e.g. to refresh a credential.
// It may rewrite cfg.Settings; the scheduler persists the change on success.
type Authorizer interface {
	Authorize(ctx context.Context, cfg Config) error
}

// ArtifactOwner is implemented by connectors that leave data behind for a job
// (files, rows) which must go when the job is destroyed.
type ArtifactOwner interface {
	RemoveArtifacts(ctx context.Context, cfg Config) error
}

// Config is what a connector call receives
type Config struct {
	Job      string
	Settings models.Settings
}

// Capability describes one mode of a connector type
type Capability struct {
	Description string
	Settings    []Setting
}

// Setting describes one configurable field of a connector
type Setting struct {
	Name   string
	Prompt string
	Before PreCheck
	After  PostCheck
}

// Entry is the outcome of a PreCheck
type Entry struct {
	Required bool
	Prompt   string
	Suggest  string
}

// PreCheck decides whether a field is asked at all and may suggest a value
type PreCheck func(ctx context.Context, job *models.Job, instance *models.ConnectorInstance, prompt string) (Entry, error)

// PostCheck validates or rewrites an answer. A nil value keeps the answer as typed.
type PostCheck func(ctx context.Context, job *models.Job, old any, answer string) (any, error)

type base struct {
	id     string
	parent string
	name   string
}

func (b base) TypeID() string       { return b.id }
func (b base) ParentTypeID() string { return b.parent }
func (b base) Name() string         { return b.name }
