package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScheduleKind identifies which of the four schedule variants a Schedule holds
type ScheduleKind string

const (
	ScheduleManual   ScheduleKind = "manual"
	ScheduleInterval ScheduleKind = "interval"
	ScheduleDaily    ScheduleKind = "daily"
	ScheduleAfter    ScheduleKind = "after"
)

// Schedule decides when a job runs. The zero value is a manual schedule.
type Schedule struct {
	Kind    ScheduleKind
	Minutes int    // interval
	Hour    int    // daily
	Minute  int    // daily
	After   string // name of the job this one follows
}

func Manual() Schedule { return Schedule{Kind: ScheduleManual} }

func Every(minutes int) Schedule { return Schedule{Kind: ScheduleInterval, Minutes: minutes} }

func DailyAt(hour, minute int) Schedule {
	return Schedule{Kind: ScheduleDaily, Hour: hour, Minute: minute}
}

func AfterJob(name string) Schedule { return Schedule{Kind: ScheduleAfter, After: name} }

// IsManual reports whether the job only runs on request
func (s Schedule) IsManual() bool {
	return s.Kind == "" || s.Kind == ScheduleManual
}

// Follows reports whether the schedule chains the job after the named job (case-insensitive)
func (s Schedule) Follows(name string) bool {
	return s.Kind == ScheduleAfter && strings.EqualFold(s.After, name)
}

// String returns the persisted textual form of the schedule
func (s Schedule) String() string {
	switch s.Kind {
	case ScheduleInterval:
		return strconv.Itoa(s.Minutes)
	case ScheduleDaily:
		return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
	case ScheduleAfter:
		return s.After
	default:
		return ""
	}
}

// Describe renders the schedule the way `laundry list` shows it
func (s Schedule) Describe() string {
	switch s.Kind {
	case ScheduleInterval:
		return fmt.Sprintf("runs every %d minutes.", s.Minutes)
	case ScheduleDaily:
		return fmt.Sprintf("runs every day at %s.", s.String())
	case ScheduleAfter:
		return fmt.Sprintf("runs after another job called %s.", s.After)
	default:
		return "runs manually."
	}
}

// Validate checks the variant's fields are in range
func (s Schedule) Validate() error {
	switch s.Kind {
	case "", ScheduleManual:
		return nil
	case ScheduleInterval:
		if s.Minutes <= 0 {
			return fmt.Errorf("interval must be a positive number of minutes, got %d", s.Minutes)
		}
	case ScheduleDaily:
		if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
			return fmt.Errorf("invalid time of day %d:%d", s.Hour, s.Minute)
		}
	case ScheduleAfter:
		if strings.TrimSpace(s.After) == "" {
			return fmt.Errorf("after-job schedule needs a job name")
		}
	default:
		return fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
	return nil
}

// ParseSchedule interprets a schedule answer typed by a user:
// blank is manual, "H:MM" is a daily time, a number is an interval in minutes,
// anything else is the name of the job to run after.
func ParseSchedule(answer string) (Schedule, error) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return Manual(), nil
	}

	if strings.Contains(answer, ":") {
		s, err := parseTimeOfDay(answer)
		if err != nil {
			return Schedule{}, err
		}
		return s, nil
	}

	if n, err := strconv.Atoi(answer); err == nil {
		s := Every(n)
		if err := s.Validate(); err != nil {
			return Schedule{}, err
		}
		return s, nil
	}

	return AfterJob(answer), nil
}

func parseTimeOfDay(value string) (Schedule, error) {
	parts := strings.SplitN(value, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid minute in %q", value)
	}

	s := DailyAt(hour, minute)
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// decodeStored maps the persisted discriminated value back into a Schedule.
// Strings holding a valid time of day are daily schedules, other strings name a job.
func decodeStored(value any) (Schedule, error) {
	switch v := value.(type) {
	case nil:
		return Manual(), nil
	case int:
		return Every(v), nil
	case int64:
		return Every(int(v)), nil
	case float64:
		if v != float64(int(v)) {
			return Schedule{}, fmt.Errorf("interval must be a whole number of minutes, got %v", v)
		}
		return Every(int(v)), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return Manual(), nil
		}
		if strings.Contains(v, ":") {
			if s, err := parseTimeOfDay(v); err == nil {
				return s, nil
			}
		}
		return AfterJob(v), nil
	default:
		return Schedule{}, fmt.Errorf("unsupported schedule value %v (%T)", value, value)
	}
}

func (s Schedule) storedValue() any {
	switch s.Kind {
	case ScheduleInterval:
		return s.Minutes
	case ScheduleDaily, ScheduleAfter:
		return s.String()
	default:
		return nil
	}
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.storedValue())
}

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := decodeStored(raw)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func (s Schedule) MarshalYAML() (any, error) {
	return s.storedValue(), nil
}

func (s *Schedule) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decoded, err := decodeStored(raw)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// IsZero lets omitempty drop manual schedules from YAML output
func (s Schedule) IsZero() bool {
	return s.IsManual()
}
