package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
)

const (
	HTTPTypeID        = "HTTP"
	HTTPJSONTypeID    = "HTTP.JSON"
	HTTPWebhookTypeID = "HTTP.Webhook"

	maxFeedBytes = 32 << 20
)

// httpAuthSettings are shared by every HTTP connector and inherited between jobs
func httpAuthSettings() []Setting {
	return []Setting{
		{
			Name:   "tokenURL",
			Prompt: "If the service issues tokens with client credentials, enter its token URL. Leave blank otherwise.",
			After:  OptionalURL,
		},
		{
			Name:   "clientId",
			Prompt: "What is the client id?",
			Before: WhenSet("tokenURL"),
			After:  RequireNonBlank,
		},
		{
			Name:   "clientSecret",
			Prompt: "What is the client secret?",
			Before: WhenSet("tokenURL"),
			After:  RequireNonBlank,
		},
	}
}

// HTTPFamily is the abstract parent of the HTTP connectors
type HTTPFamily struct{ base }

func NewHTTPFamily() *HTTPFamily {
	return &HTTPFamily{base{id: HTTPTypeID, name: "HTTP"}}
}

func (f *HTTPFamily) Input() Capability {
	return Capability{Description: "Reads from an HTTP service.", Settings: httpAuthSettings()}
}

func (f *HTTPFamily) Output() Capability {
	return Capability{Description: "Sends to an HTTP service.", Settings: httpAuthSettings()}
}

// httpTransport holds what HTTP connectors share: client, breaker and credential refresh
type httpTransport struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

func newHTTPTransport(name string, client *http.Client) httpTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return httpTransport{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: logger.New("connector-" + name),
	}
}

// Authorize exchanges client credentials for a fresh access token when a token URL is configured
func (t httpTransport) Authorize(ctx context.Context, cfg Config) error {
	tokenURL := cfg.Settings.String("tokenURL")
	if tokenURL == "" {
		return nil
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.Settings.String("clientId"),
		ClientSecret: cfg.Settings.String("clientSecret"),
		TokenURL:     tokenURL,
	}
	token, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, t.client))
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	cfg.Settings[TokenSetting] = token.AccessToken
	return nil
}

// do runs a request through the circuit breaker and returns the body of a 2xx response
func (t httpTransport) do(req *http.Request, token string) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	status := 0
	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		status = resp.StatusCode

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
		}
		return body, nil
	})
	t.logger.LogHTTPCall(req.Method, req.URL.String(), status, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// HTTPJSON loads items from a JSON feed
type HTTPJSON struct {
	base
	httpTransport
}

func NewHTTPJSON(client *http.Client) *HTTPJSON {
	return &HTTPJSON{
		base:          base{id: HTTPJSONTypeID, parent: HTTPTypeID, name: "HTTP/JSON"},
		httpTransport: newHTTPTransport("http-json", client),
	}
}

func (h *HTTPJSON) Input() Capability {
	return Capability{
		Description: "Loads items from a JSON feed over HTTP.",
		Settings: []Setting{
			{Name: "url", Prompt: "Which URL serves the feed?", After: RequireURL},
		},
	}
}

func (h *HTTPJSON) Fetch(ctx context.Context, cfg Config) ([]models.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Settings.String("url"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := h.do(req, cfg.Settings.String(TokenSetting))
	if err != nil {
		return nil, err
	}
	return DecodeItems(body)
}

// HTTPWebhook posts items as a JSON array
type HTTPWebhook struct {
	base
	httpTransport
}

func NewHTTPWebhook(client *http.Client) *HTTPWebhook {
	return &HTTPWebhook{
		base:          base{id: HTTPWebhookTypeID, parent: HTTPTypeID, name: "HTTP/Webhook"},
		httpTransport: newHTTPTransport("http-webhook", client),
	}
}

func (h *HTTPWebhook) Output() Capability {
	return Capability{
		Description: "Posts items as JSON to a webhook.",
		Settings: []Setting{
			{Name: "url", Prompt: "Which URL should receive the items?", After: RequireURL},
		},
	}
}

func (h *HTTPWebhook) Push(ctx context.Context, items []models.Item, cfg Config) error {
	if items == nil {
		items = []models.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Settings.String("url"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Laundry-Job", cfg.Job)

	_, err = h.do(req, cfg.Settings.String(TokenSetting))
	return err
}
