package quote

import (
	"context"
	"time"
)

// Provider exposes source-agnostic stock quote data. Implementations must
// honor both call shapes: orchestrators use Batch for whole-portfolio
// refreshes and Single for staggered per-symbol ticks.
type Provider interface {
	// Single returns the latest quote for one symbol.
	Single(ctx context.Context, symbol string) (*Quote, error)
	// Batch returns an outcome per requested symbol. The call itself only
	// errors when nothing could be attempted (e.g. transport setup failure);
	// per-symbol failures are reported inside the result so one bad symbol
	// never invalidates the rest.
	Batch(ctx context.Context, symbols []string) (BatchResult, error)
}

// Quote is a normalized market quote for one symbol.
type Quote struct {
	Symbol    string    // symbol as requested, e.g. "AAPL", "VOD.L"
	Price     float64   // last traded or regular-market price
	PrevClose float64   // previous session close
	Currency  string    // native quote currency as reported by the source, e.g. "USD", "GBp"
	FetchedAt time.Time // wall-clock fetch time
}

// Outcome holds the result of fetching one symbol within a batch.
// Exactly one of Quote and Err is set.
type Outcome struct {
	Quote *Quote
	Err   *FetchError
}

// BatchResult maps each requested symbol to its outcome.
type BatchResult map[string]Outcome

// Succeeded reports whether the symbol's fetch produced a usable quote.
func (r BatchResult) Succeeded(symbol string) bool {
	out, ok := r[symbol]
	return ok && out.Quote != nil
}
