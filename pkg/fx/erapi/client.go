// Package erapi fetches exchange rates from the open.er-api.com public API.
package erapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockbar/pkg/fx"
)

const (
	defaultBaseURL     = "https://open.er-api.com/v6/latest"
	defaultHTTPTimeout = 15 * time.Second
)

// Client fetches full rate tables for a fixed base currency.
type Client struct {
	baseURL    string
	base       string
	httpClient *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithBase sets the base currency the table is requested against.
func WithBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.base = strings.ToUpper(strings.TrimSpace(base))
		}
	}
}

// NewClient constructs a rate API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		base:       fx.DefaultBase,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type ratesResponse struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	Rates              map[string]float64 `json:"rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ErrorType          string             `json:"error-type"`
}

// FetchRates implements fx.RateSource.
func (c *Client) FetchRates(ctx context.Context) (*fx.Table, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(c.base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("erapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("erapi: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("erapi: http status %d", resp.StatusCode)
	}

	var decoded ratesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("erapi: decode response: %w", err)
	}
	if decoded.Result != "success" {
		return nil, fmt.Errorf("erapi: api error: %s", decoded.ErrorType)
	}
	if len(decoded.Rates) == 0 {
		return nil, fmt.Errorf("erapi: empty rate table")
	}

	fetchedAt := time.Now()
	if decoded.TimeLastUpdateUnix > 0 {
		fetchedAt = time.Unix(decoded.TimeLastUpdateUnix, 0)
	}
	base := decoded.BaseCode
	if base == "" {
		base = c.base
	}
	rates := make(map[string]float64, len(decoded.Rates))
	for code, rate := range decoded.Rates {
		if rate > 0 {
			rates[strings.ToUpper(code)] = rate
		}
	}
	return &fx.Table{
		Base:      base,
		Rates:     rates,
		FetchedAt: fetchedAt,
	}, nil
}
