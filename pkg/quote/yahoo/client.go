package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockbar/pkg/quote"
)

const (
	defaultBaseURL     = "https://query1.finance.yahoo.com"
	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// Client wraps access to the Yahoo Finance quote and chart endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
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

// WithBaseURL overrides the default query endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
// Yahoo rejects requests with an empty or default Go user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient constructs a Yahoo Finance API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Quotes fetches current and previous-close prices for the given symbols via
// the multi-symbol quote endpoint. Symbols absent from the response are
// simply missing from the returned map.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]*quote.Quote, error) {
	if len(symbols) == 0 {
		return map[string]*quote.Quote{}, nil
	}
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var decoded quoteResponse
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	if apiErr := decoded.QuoteResponse.Error; apiErr != nil {
		return nil, fmt.Errorf("yahoo: api error %s: %s", apiErr.Code, apiErr.Description)
	}

	quotes := make(map[string]*quote.Quote, len(decoded.QuoteResponse.Result))
	for _, result := range decoded.QuoteResponse.Result {
		q := result.toQuote()
		if q != nil {
			quotes[q.Symbol] = q
		}
	}
	return quotes, nil
}

// Chart fetches a single symbol via the chart endpoint. Used as a fallback
// when the batch quote endpoint omits or rejects a symbol.
func (c *Client) Chart(ctx context.Context, symbol string) (*quote.Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=2d",
		c.baseURL, url.PathEscape(symbol))

	var decoded chartResponse
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	if apiErr := decoded.Chart.Error; apiErr != nil {
		return nil, fmt.Errorf("yahoo: api error %s: %s: %w", apiErr.Code, apiErr.Description, quote.ErrNoData)
	}
	if len(decoded.Chart.Result) == 0 {
		return nil, quote.ErrNoData
	}
	return decoded.Chart.Result[0].toQuote(symbol)
}

func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("yahoo: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("yahoo: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &quote.StatusError{Code: resp.StatusCode, Body: truncate(string(body), 256)}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("yahoo: decode response: %w", err)
	}
	return nil
}

func (r quoteResult) toQuote() *quote.Quote {
	price := math.NaN()
	if r.RegularMarketPrice != nil {
		price = *r.RegularMarketPrice
	}
	prev := math.NaN()
	if r.RegularMarketPreviousClose != nil {
		prev = *r.RegularMarketPreviousClose
	}
	// Backfill one side from the other; only give up when both are missing.
	if math.IsNaN(price) && !math.IsNaN(prev) {
		price = prev
	}
	if math.IsNaN(prev) && !math.IsNaN(price) {
		prev = price
	}
	if math.IsNaN(price) {
		return nil
	}
	fetchedAt := time.Now()
	if r.RegularMarketTime > 0 {
		fetchedAt = time.Unix(r.RegularMarketTime, 0)
	}
	return &quote.Quote{
		Symbol:    r.Symbol,
		Price:     price,
		PrevClose: prev,
		Currency:  r.Currency,
		FetchedAt: fetchedAt,
	}
}

func (r chartResult) toQuote(symbol string) (*quote.Quote, error) {
	price := r.Meta.RegularMarketPrice
	prev := r.Meta.PreviousClose

	// The chart meta omits previousClose for some instruments; fall back to
	// the second-to-last daily close the way the quote endpoint would report.
	if prev == 0 {
		for _, q := range r.Indicators.Quote {
			closes := nonNilCloses(q.Close)
			if len(closes) > 1 {
				prev = closes[len(closes)-2]
			}
		}
	}
	if price == 0 && prev != 0 {
		price = prev
	}
	if prev == 0 && price != 0 {
		prev = price
	}
	if price == 0 || math.IsNaN(price) {
		return nil, quote.ErrNoData
	}
	fetchedAt := time.Now()
	if r.Meta.RegularMarketTime > 0 {
		fetchedAt = time.Unix(r.Meta.RegularMarketTime, 0)
	}
	return &quote.Quote{
		Symbol:    symbol,
		Price:     price,
		PrevClose: prev,
		Currency:  r.Meta.Currency,
		FetchedAt: fetchedAt,
	}, nil
}

func nonNilCloses(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
