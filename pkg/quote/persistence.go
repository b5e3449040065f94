package quote

import "context"

// Persistence hooks allow providers and orchestrators to persist quotes to
// external stores without depending on the storage technology.
type Persistence interface {
	// RecordQuote persists a single successful quote.
	RecordQuote(ctx context.Context, provider string, q *Quote) error
}
