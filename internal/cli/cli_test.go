package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iddaa-lens/laundry/internal/app"
	"github.com/iddaa-lens/laundry/internal/config"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/wizard"
)

const jobsFile = `jobs:
  - name: copy
    input:
      type: File.JSON
      settings:
        dir: /data/in
        path: feed.json
    output:
      type: File.JSON
      settings:
        dir: /data/out
  - name: broken
    input:
      type: File.JSON
      settings:
        dir: /data/in
        path: missing.json
    output:
      type: File.JSON
      settings:
        dir: /data/out
    schedule: copy
`

type answers struct {
	script []string
	said   []string
}

func (a *answers) Say(format string, args ...any) {
	a.said = append(a.said, fmt.Sprintf(format, args...))
}

func (a *answers) Ask(string, string) (string, error) {
	if len(a.script) == 0 {
		return "", io.EOF
	}
	answer := a.script[0]
	a.script = a.script[1:]
	return answer, nil
}

func (a *answers) Choose(message string, _ []string, def string) (string, error) {
	return a.Ask(message, def)
}

type fixture struct {
	fs      afero.Fs
	answers *answers
}

func newFixture(t *testing.T, stored string) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/in/feed.json", []byte(`[{"id":"1","title":"one"},{"id":"2","title":"two"}]`), 0o644))
	if stored != "" {
		require.NoError(t, afero.WriteFile(fs, "/laundry/laundry.yaml", []byte(stored), 0o644))
	}
	return &fixture{fs: fs, answers: &answers{}}
}

func (f *fixture) execute(args ...string) (string, error) {
	open := func(ctx context.Context) (*app.App, error) {
		cfg := &config.Config{
			Home:   "/laundry",
			Store:  config.StoreConfig{Kind: "file", Path: "/laundry/laundry.yaml"},
			Tick:   config.TickConfig{Schedule: "@every 1m"},
			Server: config.ServerConfig{Disabled: true},
		}
		return app.New(ctx, cfg, app.Dependencies{Fs: f.fs})
	}
	prompter := func(io.Writer) wizard.Prompter { return f.answers }

	var out bytes.Buffer
	root := NewRootCommand(open, prompter)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_ReportsEveryJobInTheChain(t *testing.T) {
	f := newFixture(t, jobsFile)

	out, err := f.execute("run", "copy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 jobs failed")
	assert.Contains(t, out, "✓ copy: 2 items")
	assert.Contains(t, out, "✗ broken:")

	files, err := afero.ReadDir(f.fs, "/data/out/copy")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRun_UnknownJob(t *testing.T) {
	f := newFixture(t, jobsFile)

	_, err := f.execute("run", "ghost")
	assert.True(t, jobs.IsNotFound(err), "got %v", err)
}

func TestTick_NothingDue(t *testing.T) {
	f := newFixture(t, jobsFile)

	out, err := f.execute("tick")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs to run.")
}

func TestList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out, err := newFixture(t, "").execute("list")
		require.NoError(t, err)
		assert.Contains(t, out, "There are no jobs configured.")
	})

	t.Run("table", func(t *testing.T) {
		out, err := newFixture(t, jobsFile).execute("list")
		require.NoError(t, err)
		assert.Contains(t, out, "copy")
		assert.Contains(t, out, "broken")
		assert.Contains(t, out, "never")
	})

	t.Run("plain", func(t *testing.T) {
		out, err := newFixture(t, jobsFile).execute("list", "--plain")
		require.NoError(t, err)
		assert.Contains(t, out, "Current jobs:")
	})
}

func TestEdit_UnknownJob(t *testing.T) {
	f := newFixture(t, jobsFile)

	_, err := f.execute("edit", "ghost")
	assert.True(t, jobs.IsNotFound(err), "got %v", err)
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, jobsFile)
	f.answers.script = []string{"broken"}

	_, err := f.execute("destroy", "broken")
	require.NoError(t, err)

	out, err := f.execute("list", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "copy")
	assert.NotContains(t, out, "broken")
}

func TestDestroy_AsksForName(t *testing.T) {
	f := newFixture(t, jobsFile)
	f.answers.script = []string{"copy", "nope"}

	_, err := f.execute("destroy")
	require.NoError(t, err)
	assert.Contains(t, f.answers.said, "Job copy saved.")
}
