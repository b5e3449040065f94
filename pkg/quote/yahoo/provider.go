package yahoo

import (
	"context"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/pkg/quote"
)

const (
	defaultSingleTimeout = 20 * time.Second
	defaultBatchTimeout  = 2 * time.Minute
)

// Provider adapts the Yahoo client to the generic quote.Provider contract.
type Provider struct {
	client       *Client
	timeout      time.Duration
	batchTimeout time.Duration
}

type providerConfig struct {
	timeout       time.Duration
	batchTimeout  time.Duration
	clientOptions []Option
}

// ProviderOption customises the Yahoo provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-symbol call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithBatchTimeout overrides the default whole-batch call timeout.
func WithBatchTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.batchTimeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying Yahoo client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a Yahoo quote provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout:      defaultSingleTimeout,
		batchTimeout: defaultBatchTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:       NewClient(cfg.clientOptions...),
		timeout:      cfg.timeout,
		batchTimeout: cfg.batchTimeout,
	}
}

func init() {
	quote.RegisterProvider("yahoo", func(name string, cfg *quote.ProviderConfig) (quote.Provider, error) {
		opts := []ProviderOption{}
		clientOpts := []Option{}
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.UserAgent != "" {
			clientOpts = append(clientOpts, WithUserAgent(cfg.UserAgent))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
			clientOpts = append(clientOpts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		if cfg.BatchTimeout > 0 {
			opts = append(opts, WithBatchTimeout(cfg.BatchTimeout))
		}
		if len(clientOpts) > 0 {
			opts = append(opts, WithClientOptions(clientOpts...))
		}
		return NewProvider(opts...), nil
	})
}

// Single fetches one symbol, preferring the quote endpoint and falling back
// to the chart endpoint when the symbol is missing from the response.
func (p *Provider) Single(ctx context.Context, symbol string) (*quote.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	quotes, err := p.client.Quotes(ctx, []string{symbol})
	if err == nil {
		if q, ok := quotes[symbol]; ok {
			return q, nil
		}
		err = quote.ErrNoData
	}

	logx.WithContext(ctx).Infof("yahoo: quote endpoint miss for %s, trying chart: %v", symbol, err)
	q, chartErr := p.client.Chart(ctx, symbol)
	if chartErr != nil {
		return nil, quote.NewFetchError(symbol, chartErr)
	}
	return q, nil
}

// Batch fetches all symbols in one multi-symbol call. Symbols the batch call
// omits are retried individually before a failure is reported, so a single
// bad symbol never takes down the rest of the batch.
func (p *Provider) Batch(ctx context.Context, symbols []string) (quote.BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.batchTimeout)
	defer cancel()

	result := make(quote.BatchResult, len(symbols))
	quotes, err := p.client.Quotes(ctx, symbols)
	if err != nil {
		logx.WithContext(ctx).Errorf("yahoo: batch quote call failed, falling back to singles: %v", err)
		quotes = map[string]*quote.Quote{}
	}

	for _, symbol := range symbols {
		if q, ok := quotes[symbol]; ok {
			result[symbol] = quote.Outcome{Quote: q}
			continue
		}
		q, singleErr := p.client.Chart(ctx, symbol)
		if singleErr != nil {
			result[symbol] = quote.Outcome{Err: quote.NewFetchError(symbol, singleErr)}
			continue
		}
		result[symbol] = quote.Outcome{Quote: q}
	}
	return result, nil
}
