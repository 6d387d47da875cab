package jobs

import (
	"errors"
	"fmt"
	"strings"
)

// Phase names the pipeline step a connector error happened in
type Phase string

const (
	PhaseConfigure Phase = "configure"
	PhaseAuthorize Phase = "authorize"
	PhaseFetch     Phase = "fetch"
	PhasePush      Phase = "push"
)

var (
	// ErrMissingConnector means a job has no input or no output bound
	ErrMissingConnector = errors.New("missing connector")
	// ErrUnknownConnectorType means a job references a type the catalog does not know
	ErrUnknownConnectorType = errors.New("unknown connector type")
)

// ValidationError reports a bad job name, schedule or field value. Job state is unchanged.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports a request for a job that does not exist
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %q not found", e.Name)
}

// ConnectorError wraps a failure of one pipeline phase of one job
type ConnectorError struct {
	Job   string
	Phase Phase
	Err   error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("job %s failed during %s: %v", e.Job, e.Phase, e.Err)
}

func (e *ConnectorError) Unwrap() error { return e.Err }

// PersistenceError wraps a store write failure. In-memory state is ahead of the store.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist jobs: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CyclicScheduleError reports after-job links that form a loop
type CyclicScheduleError struct {
	Jobs []string
}

func (e *CyclicScheduleError) Error() string {
	return fmt.Sprintf("cyclic schedule: %s", strings.Join(e.Jobs, " -> "))
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
