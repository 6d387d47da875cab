package models

import (
	"strconv"
	"strings"
	"time"
)

// Job pairs a source connector with a sink connector and a schedule
type Job struct {
	Name     string             `json:"name" yaml:"name"`
	Input    *ConnectorInstance `json:"input,omitempty" yaml:"input,omitempty"`
	Output   *ConnectorInstance `json:"output,omitempty" yaml:"output,omitempty"`
	Schedule Schedule           `json:"schedule" yaml:"schedule,omitempty"`
	LastRun  *time.Time         `json:"lastRun,omitempty" yaml:"lastRun,omitempty"`
}

// Mode selects the input or the output side of a job
type Mode string

const (
	ModeInput  Mode = "input"
	ModeOutput Mode = "output"
)

// Connector returns the instance bound for the given mode
func (j *Job) Connector(mode Mode) *ConnectorInstance {
	if mode == ModeOutput {
		return j.Output
	}
	return j.Input
}

// SetConnector binds an instance for the given mode
func (j *Job) SetConnector(mode Mode, instance *ConnectorInstance) {
	if mode == ModeOutput {
		j.Output = instance
		return
	}
	j.Input = instance
}

// Is compares job names case-insensitively
func (j *Job) Is(name string) bool {
	return strings.EqualFold(j.Name, name)
}

// Clone returns a deep copy so edits can be committed atomically
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Input = j.Input.Clone()
	c.Output = j.Output.Clone()
	if j.LastRun != nil {
		t := *j.LastRun
		c.LastRun = &t
	}
	return &c
}

// ConnectorInstance is a connector type bound to concrete setting values
type ConnectorInstance struct {
	Type     string   `json:"type" yaml:"type"`
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// NewConnectorInstance creates an instance of the given type with no settings
func NewConnectorInstance(typeID string) *ConnectorInstance {
	return &ConnectorInstance{Type: typeID, Settings: Settings{}}
}

func (c *ConnectorInstance) Clone() *ConnectorInstance {
	if c == nil {
		return nil
	}
	return &ConnectorInstance{Type: c.Type, Settings: c.Settings.Clone()}
}

// Settings holds connector setting values keyed by setting name
type Settings map[string]any

// Has reports whether a non-empty value is stored for name
func (s Settings) Has(name string) bool {
	v, ok := s[name]
	if !ok || v == nil {
		return false
	}
	if str, isStr := v.(string); isStr {
		return str != ""
	}
	return true
}

// String returns the value for name rendered as a string
func (s Settings) String(name string) string {
	switch v := s[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Bool interprets the value for name as a boolean
func (s Settings) Bool(name string) bool {
	switch v := s[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// Int interprets the value for name as an integer, returning def when unset or invalid
func (s Settings) Int(name string, def int) int {
	switch v := s[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	c := make(Settings, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
