package models

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Schedule
		wantErr bool
	}{
		{name: "blank is manual", input: "   ", want: Manual()},
		{name: "interval", input: "60", want: Every(60)},
		{name: "zero interval", input: "0", wantErr: true},
		{name: "negative interval", input: "-5", wantErr: true},
		{name: "daily time", input: "9:30", want: DailyAt(9, 30)},
		{name: "daily time padded", input: "13:05", want: DailyAt(13, 5)},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "garbage time", input: "ab:cd", wantErr: true},
		{name: "job name lowercased", input: " Fetch-Likes ", want: AfterJob("fetch-likes")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSchedule(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSchedule(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSchedule_Describe(t *testing.T) {
	tests := []struct {
		schedule Schedule
		expected string
	}{
		{Manual(), "runs manually."},
		{Schedule{}, "runs manually."},
		{Every(15), "runs every 15 minutes."},
		{DailyAt(9, 5), "runs every day at 09:05."},
		{AfterJob("other"), "runs after another job called other."},
	}

	for _, tt := range tests {
		if got := tt.schedule.Describe(); got != tt.expected {
			t.Errorf("Describe() = %q, want %q", got, tt.expected)
		}
	}
}

func TestSchedule_JSONEncoding(t *testing.T) {
	tests := []struct {
		schedule Schedule
		encoded  string
	}{
		{Manual(), "null"},
		{Every(60), "60"},
		{DailyAt(9, 30), `"09:30"`},
		{AfterJob("likes"), `"likes"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.schedule)
		if err != nil {
			t.Fatalf("Marshal(%+v) failed: %v", tt.schedule, err)
		}
		if string(data) != tt.encoded {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.schedule, data, tt.encoded)
		}
	}
}

func TestSchedule_DecodeLegacyValues(t *testing.T) {
	var job Job
	if err := json.Unmarshal([]byte(`{"name":"a","schedule":"9:5"}`), &job); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if job.Schedule != DailyAt(9, 5) {
		t.Errorf("expected daily 9:05, got %+v", job.Schedule)
	}

	if err := json.Unmarshal([]byte(`{"name":"a","schedule":""}`), &job); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !job.Schedule.IsManual() {
		t.Errorf("expected empty string to decode as manual, got %+v", job.Schedule)
	}

	if err := json.Unmarshal([]byte(`{"name":"a","schedule":1.5}`), &job); err == nil {
		t.Error("expected fractional interval to be rejected")
	}
}

func TestSchedule_YAMLRoundTrip(t *testing.T) {
	source := `
- name: likes
  schedule: 30
- name: digest
  schedule: "07:45"
- name: publish
  schedule: likes
- name: manual
`
	var jobs []Job
	if err := yaml.Unmarshal([]byte(source), &jobs); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}

	want := []Schedule{Every(30), DailyAt(7, 45), AfterJob("likes"), Manual()}
	for i, job := range jobs {
		if job.Schedule.Kind == "" {
			job.Schedule = Manual()
		}
		if job.Schedule != want[i] {
			t.Errorf("job %s schedule = %+v, want %+v", job.Name, job.Schedule, want[i])
		}
	}

	out, err := yaml.Marshal(jobs)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}

	var again []Job
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-decoding failed: %v", err)
	}
	if again[1].Schedule != DailyAt(7, 45) {
		t.Errorf("daily schedule did not survive encoding: %s", out)
	}
}

func TestSchedule_Follows(t *testing.T) {
	s := AfterJob("Likes")
	if !s.Follows("likes") {
		t.Error("expected case-insensitive match")
	}
	if Every(5).Follows("5") {
		t.Error("interval schedule must never follow a job")
	}
}

func TestJob_CloneIsDeep(t *testing.T) {
	original := &Job{
		Name:  "a",
		Input: &ConnectorInstance{Type: "HTTP.JSON", Settings: Settings{"url": "http://x"}},
	}
	clone := original.Clone()
	clone.Input.Settings["url"] = "http://y"

	if original.Input.Settings.String("url") != "http://x" {
		t.Error("mutating the clone changed the original settings")
	}
}

func TestSettings_Accessors(t *testing.T) {
	s := Settings{"flag": "true", "n": 5.0, "empty": "", "name": "x"}

	if !s.Bool("flag") {
		t.Error("expected flag to be true")
	}
	if s.Int("n", 0) != 5 {
		t.Errorf("Int(n) = %d, want 5", s.Int("n", 0))
	}
	if s.Int("missing", 7) != 7 {
		t.Error("expected default for missing key")
	}
	if s.Has("empty") || !s.Has("name") {
		t.Error("Has should ignore empty strings")
	}
}
