// Package sim provides a scripted in-memory quote source for tests and
// offline development. Prices are set by the caller and served verbatim;
// symbols can be scripted to fail with a chosen reason.
package sim

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"stockbar/pkg/quote"
)

// Provider is an in-memory quote.Provider implementation.
type Provider struct {
	mu sync.Mutex

	quotes   map[string]quote.Quote
	failures map[string]quote.Reason
	calls    int
	nowFn    func() time.Time
}

// New constructs an empty simulator.
func New() *Provider {
	return &Provider{
		quotes:   make(map[string]quote.Quote),
		failures: make(map[string]quote.Reason),
		nowFn:    time.Now,
	}
}

func init() {
	quote.RegisterProvider("sim", func(name string, cfg *quote.ProviderConfig) (quote.Provider, error) {
		return New(), nil
	})
}

func canonical(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// SetQuote scripts the quote served for a symbol and clears any scripted
// failure for it.
func (p *Provider) SetQuote(symbol string, price, prevClose float64, currency string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := canonical(symbol)
	delete(p.failures, s)
	p.quotes[s] = quote.Quote{
		Symbol:    symbol,
		Price:     price,
		PrevClose: prevClose,
		Currency:  currency,
	}
}

// FailWith scripts every subsequent fetch of symbol to fail with reason.
func (p *Provider) FailWith(symbol string, reason quote.Reason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[canonical(symbol)] = reason
}

// Calls returns how many fetch calls (single or batch) have been made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// SetNow overrides the clock used to stamp served quotes.
func (p *Provider) SetNow(nowFn func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if nowFn != nil {
		p.nowFn = nowFn
	}
}

// Single serves the scripted quote or failure for one symbol.
func (p *Provider) Single(ctx context.Context, symbol string) (*quote.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	out := p.lookup(symbol)
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Quote, nil
}

// Batch serves scripted outcomes for each symbol.
func (p *Provider) Batch(ctx context.Context, symbols []string) (quote.BatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	result := make(quote.BatchResult, len(symbols))
	for _, symbol := range symbols {
		result[symbol] = p.lookup(symbol)
	}
	return result, nil
}

// lookup must be called with p.mu held.
func (p *Provider) lookup(symbol string) quote.Outcome {
	s := canonical(symbol)
	if reason, ok := p.failures[s]; ok {
		return quote.Outcome{Err: &quote.FetchError{
			Symbol: symbol,
			Reason: reason,
			Err:    errors.New("sim: scripted failure"),
		}}
	}
	q, ok := p.quotes[s]
	if !ok {
		return quote.Outcome{Err: &quote.FetchError{
			Symbol: symbol,
			Reason: quote.ReasonInvalidSymbol,
			Err:    quote.ErrNoData,
		}}
	}
	q.Symbol = symbol
	q.FetchedAt = p.nowFn()
	return quote.Outcome{Quote: &q}
}
