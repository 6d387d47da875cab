package connectors_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/models"
)

func TestHTTPJSON_AuthorizeAndFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a","title":"first"},{"id":"b","title":"second"}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	conn := connectors.NewHTTPJSON(server.Client())
	cfg := connectors.Config{
		Job: "news",
		Settings: models.Settings{
			"url":          server.URL + "/feed",
			"tokenURL":     server.URL + "/token",
			"clientId":     "id",
			"clientSecret": "secret",
		},
	}

	ctx := context.Background()
	require.NoError(t, conn.Authorize(ctx, cfg))
	assert.Equal(t, "fresh-token", cfg.Settings.String(connectors.TokenSetting))

	items, err := conn.Fetch(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Title)
}

func TestHTTPJSON_AuthorizeWithoutTokenURL(t *testing.T) {
	conn := connectors.NewHTTPJSON(nil)
	cfg := connectors.Config{Job: "news", Settings: models.Settings{"url": "https://example.com"}}

	require.NoError(t, conn.Authorize(context.Background(), cfg))
	assert.False(t, cfg.Settings.Has(connectors.TokenSetting))
}

func TestHTTPJSON_FetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	conn := connectors.NewHTTPJSON(server.Client())
	_, err := conn.Fetch(context.Background(), connectors.Config{
		Job:      "news",
		Settings: models.Settings{"url": server.URL},
	})
	assert.ErrorContains(t, err, "502")
}

func TestHTTPWebhook_Push(t *testing.T) {
	var received []models.Item
	var job string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		job = r.Header.Get("X-Laundry-Job")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	conn := connectors.NewHTTPWebhook(server.Client())
	err := conn.Push(context.Background(), []models.Item{{ID: "1", Title: "hello"}}, connectors.Config{
		Job:      "news",
		Settings: models.Settings{"url": server.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, "news", job)
	require.Len(t, received, 1)
	assert.Equal(t, "hello", received[0].Title)
}

func TestHTTPWebhook_PushRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	conn := connectors.NewHTTPWebhook(server.Client())
	err := conn.Push(context.Background(), nil, connectors.Config{Job: "news", Settings: models.Settings{"url": server.URL}})
	assert.Error(t, err)
}
