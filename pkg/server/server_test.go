package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/connectors/connectortest"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/metrics"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/server"
	"github.com/iddaa-lens/laundry/pkg/store"
)

type staticTicks struct{ report *jobs.Report }

func (s staticTicks) LastReport() *jobs.Report { return s.report }

func newTestServer(t *testing.T, opts server.Options) (*httptest.Server, *connectortest.Connector) {
	t.Helper()
	ctx := context.Background()

	source := connectortest.New("Fake.Source", "")
	source.Items["feed"] = []models.Item{{ID: "1"}, {ID: "2"}}
	source.FetchErr["broken"] = errors.New("upstream down")
	sink := connectortest.New("Fake.Sink", "")
	catalog := connectors.NewCatalog().MustRegister(source, sink)

	bind := func(name string, schedule models.Schedule) *models.Job {
		return &models.Job{
			Name:     name,
			Input:    models.NewConnectorInstance("Fake.Source"),
			Output:   models.NewConnectorInstance("Fake.Sink"),
			Schedule: schedule,
		}
	}

	st := store.NewFileStore(afero.NewMemMapFs(), "/laundry.yaml")
	require.NoError(t, st.Save(ctx, []*models.Job{
		bind("feed", models.Every(30)),
		bind("after-feed", models.AfterJob("feed")),
		bind("broken", models.Manual()),
	}))

	reg := prometheus.NewRegistry()
	scheduler := jobs.NewScheduler(catalog, st, jobs.Options{
		Recorder: metrics.NewRecorder(reg),
		Logger:   logger.Nop(),
		Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, scheduler.Load(ctx))

	opts.Scheduler = scheduler
	opts.StoreKind = store.KindFile
	opts.Gatherer = reg

	ts := httptest.NewServer(server.New(opts, logger.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts, sink
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestHealth(t *testing.T) {
	last := &jobs.Report{
		RunID:     "r1",
		StartedAt: time.Date(2024, 5, 1, 11, 59, 0, 0, time.UTC),
		Results:   []jobs.RunResult{{Job: "feed"}, {Job: "broken", Err: errors.New("x")}},
	}
	ts, _ := newTestServer(t, server.Options{Ticks: staticTicks{report: last}})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body struct {
		Status   string `json:"status"`
		Jobs     int    `json:"jobs"`
		Store    string `json:"store"`
		LastTick struct {
			RunID  string `json:"run_id"`
			Ran    int    `json:"ran"`
			Failed int    `json:"failed"`
		} `json:"last_tick"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 3, body.Jobs)
	assert.Equal(t, "file", body.Store)
	assert.Equal(t, "r1", body.LastTick.RunID)
	assert.Equal(t, 2, body.LastTick.Ran)
	assert.Equal(t, 1, body.LastTick.Failed)
}

func TestJobsList(t *testing.T) {
	ts, _ := newTestServer(t, server.Options{})

	resp, err := http.Get(ts.URL + "/api/jobs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			Name        string          `json:"name"`
			Input       string          `json:"input"`
			Schedule    json.RawMessage `json:"schedule"`
			Description string          `json:"description"`
			Due         bool            `json:"due"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, resp, &body)

	require.True(t, body.Success)
	require.Len(t, body.Data, 3)
	assert.Equal(t, 3, body.Meta.Total)
	assert.Equal(t, "feed", body.Data[0].Name)
	assert.Equal(t, "Fake.Source", body.Data[0].Input)
	assert.JSONEq(t, "30", string(body.Data[0].Schedule))
	assert.Equal(t, "runs every 30 minutes.", body.Data[0].Description)
	assert.True(t, body.Data[0].Due, "never run interval jobs are due")
	assert.JSONEq(t, `"feed"`, string(body.Data[1].Schedule))
	assert.False(t, body.Data[1].Due)
	assert.JSONEq(t, "null", string(body.Data[2].Schedule))
}

func TestJobsGet(t *testing.T) {
	ts, _ := newTestServer(t, server.Options{})

	resp, err := http.Get(ts.URL + "/api/jobs/FEED")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/jobs/ghost")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

type runBody struct {
	Success bool `json:"success"`
	Data    struct {
		Request string `json:"request"`
		Results []struct {
			Job   string  `json:"job"`
			Items int     `json:"items"`
			Error *string `json:"error"`
		} `json:"results"`
	} `json:"data"`
}

func TestJobsRun(t *testing.T) {
	ts, sink := newTestServer(t, server.Options{})

	resp, err := http.Post(ts.URL+"/api/jobs/feed/run", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body runBody
	decode(t, resp, &body)

	assert.True(t, body.Success)
	assert.Equal(t, "feed", body.Data.Request)
	require.Len(t, body.Data.Results, 2)
	assert.Equal(t, "feed", body.Data.Results[0].Job)
	assert.Equal(t, 2, body.Data.Results[0].Items)
	assert.Equal(t, "after-feed", body.Data.Results[1].Job)
	assert.Len(t, sink.Pushed("feed"), 2)

	resp, err = http.Post(ts.URL+"/api/jobs/broken/run", "application/json", nil)
	require.NoError(t, err)
	var failed runBody
	decode(t, resp, &failed)
	assert.False(t, failed.Success)
	require.Len(t, failed.Data.Results, 1)
	require.NotNil(t, failed.Data.Results[0].Error)
	assert.Contains(t, *failed.Data.Results[0].Error, "upstream down")

	resp, err = http.Post(ts.URL+"/api/jobs/ghost/run", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	metricsText := string(raw)
	assert.Contains(t, metricsText, `laundry_job_runs_total{job="feed",result="success"} 1`)
	assert.Contains(t, metricsText, `laundry_job_runs_total{job="broken",result="failure"} 1`)
}

func TestJobsRun_Preflight(t *testing.T) {
	ts, sink := newTestServer(t, server.Options{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/jobs/feed/run", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Empty(t, sink.Pushed("feed"), "a preflight never runs the job")
}
