package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/pkg/journal"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/quote"
)

// Orchestrator drives the fetch cycle using the coordinator's decisions. It
// owns no retry policy of its own: eligibility is decided by the coordinator
// before any I/O, outcomes are reported back after, and the coordinator's
// lock is never held across a fetch.
type Orchestrator struct {
	coordinator  *Coordinator
	book         *portfolio.Book
	provider     quote.Provider
	providerName string

	persistence quote.Persistence
	journal     *journal.Writer
	onSuspend   func(SymbolStatus)
	nowFn       func() time.Time

	cursorMu sync.Mutex
	cursor   int
}

// Option customises an orchestrator.
type Option func(*Orchestrator)

// WithPersistence installs a hook that records successful quotes.
func WithPersistence(p quote.Persistence) Option {
	return func(o *Orchestrator) { o.persistence = p }
}

// WithJournal installs a cycle journal writer.
func WithJournal(w *journal.Writer) Option {
	return func(o *Orchestrator) { o.journal = w }
}

// WithSuspendHook installs a callback invoked when a failure trips the
// circuit breaker. Used to surface the suspension to the UI layer.
func WithSuspendHook(fn func(SymbolStatus)) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.onSuspend = fn
		}
	}
}

// WithProviderName names the quote source for persistence and logs.
func WithProviderName(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.providerName = name
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(nowFn func() time.Time) Option {
	return func(o *Orchestrator) {
		if nowFn != nil {
			o.nowFn = nowFn
		}
	}
}

// NewOrchestrator wires an orchestrator over a coordinator, a portfolio book
// and a quote provider.
func NewOrchestrator(coordinator *Coordinator, book *portfolio.Book, provider quote.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		coordinator:  coordinator,
		book:         book,
		provider:     provider,
		providerName: "quote",
		onSuspend:    func(SymbolStatus) {},
		nowFn:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Coordinator exposes the owned coordinator for status queries and manual
// overrides.
func (o *Orchestrator) Coordinator() *Coordinator { return o.coordinator }

// Book exposes the owned portfolio book.
func (o *Orchestrator) Book() *portfolio.Book { return o.book }

// RefreshAll performs one batch refresh: every eligible symbol goes into a
// single multi-symbol fetch, and each symbol's outcome is applied
// individually so one failure never invalidates the rest. Ordinary fetch
// failures never surface as an error; only a wholesale transport failure
// does, and even then every attempted symbol has its failure recorded.
func (o *Orchestrator) RefreshAll(ctx context.Context) error {
	now := o.nowFn()
	eligible := make([]string, 0)
	for _, symbol := range o.book.Symbols() {
		if o.coordinator.ShouldRefresh(symbol, now) {
			eligible = append(eligible, symbol)
		}
	}
	if len(eligible) == 0 {
		logx.WithContext(ctx).Debugf("refresh: batch skipped, no eligible symbols")
		return nil
	}

	started := o.nowFn()
	result, err := o.provider.Batch(ctx, eligible)
	if err != nil {
		logx.WithContext(ctx).Errorf("refresh: batch fetch failed outright: %v", err)
		failures := make(quote.BatchResult, len(eligible))
		for _, symbol := range eligible {
			fetchErr := quote.NewFetchError(symbol, err)
			o.applyFailure(ctx, symbol, fetchErr)
			failures[symbol] = quote.Outcome{Err: fetchErr}
		}
		o.writeJournal("batch", eligible, failures, started)
		return err
	}

	for _, symbol := range eligible {
		out, ok := result[symbol]
		switch {
		case ok && out.Quote != nil:
			o.applySuccess(ctx, symbol, out.Quote)
		case ok && out.Err != nil:
			o.applyFailure(ctx, symbol, out.Err)
		default:
			o.applyFailure(ctx, symbol, quote.NewFetchError(symbol, quote.ErrNoData))
		}
	}
	o.writeJournal("batch", eligible, result, started)
	return nil
}

// Tick performs one staggered-refresh step: it walks the holdings in stable
// round-robin order from the saved cursor, fetches the first eligible
// symbol, and stops. Ineligible symbols are skipped without consuming the
// tick, so no symbol starves behind a suspended neighbour.
func (o *Orchestrator) Tick(ctx context.Context) {
	symbols := o.book.Symbols()
	if len(symbols) == 0 {
		return
	}
	now := o.nowFn()

	o.cursorMu.Lock()
	start := o.cursor % len(symbols)
	picked := ""
	for i := 0; i < len(symbols); i++ {
		idx := (start + i) % len(symbols)
		if o.coordinator.ShouldRefresh(symbols[idx], now) {
			picked = symbols[idx]
			o.cursor = idx + 1
			break
		}
	}
	if picked == "" {
		o.cursor = start + 1
	}
	o.cursorMu.Unlock()

	if picked == "" {
		return
	}

	started := o.nowFn()
	q, err := o.provider.Single(ctx, picked)
	if err != nil {
		fetchErr := quote.NewFetchError(picked, err)
		o.applyFailure(ctx, picked, fetchErr)
		o.writeJournal("staggered", []string{picked}, quote.BatchResult{picked: {Err: fetchErr}}, started)
		return
	}
	o.applySuccess(ctx, picked, q)
	o.writeJournal("staggered", []string{picked}, quote.BatchResult{picked: {Quote: q}}, started)
}

// RetryNow is the user-triggered manual override: it lifts any suspension
// for symbol and immediately attempts a single fetch.
func (o *Orchestrator) RetryNow(ctx context.Context, symbol string) SymbolStatus {
	o.coordinator.ClearSuspension(symbol)
	q, err := o.provider.Single(ctx, symbol)
	if err != nil {
		o.applyFailure(ctx, symbol, quote.NewFetchError(symbol, err))
	} else {
		o.applySuccess(ctx, symbol, q)
	}
	return o.coordinator.Status(symbol, o.nowFn())
}

// applySuccess is the shared apply-fetch-outcome path for successes.
func (o *Orchestrator) applySuccess(ctx context.Context, symbol string, q *quote.Quote) {
	now := o.nowFn()
	fetchedAt := q.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now
	}
	o.book.ApplySnapshot(symbol, portfolio.Snapshot{
		Price:     q.Price,
		PrevClose: q.PrevClose,
		Currency:  q.Currency,
		FetchedAt: fetchedAt,
	})
	o.coordinator.RecordSuccess(symbol, now)
	if o.persistence != nil {
		if err := o.persistence.RecordQuote(ctx, o.providerName, q); err != nil {
			logx.WithContext(ctx).Errorf("refresh: persist quote %s: %v", symbol, err)
		}
	}
	logx.WithContext(ctx).Infof("refresh: %s updated price=%.4f %s", symbol, q.Price, q.Currency)
}

// applyFailure is the shared apply-fetch-outcome path for failures. The
// prior snapshot stays untouched; only the coordinator state moves.
func (o *Orchestrator) applyFailure(ctx context.Context, symbol string, fetchErr *quote.FetchError) {
	now := o.nowFn()
	state := o.coordinator.RecordFailure(symbol, now)
	status := o.coordinator.Status(symbol, now)
	if state == StatusSuspended {
		logx.WithContext(ctx).Errorf("refresh: %s suspended after %d consecutive failures (reason=%s), resumes %s",
			symbol, status.Failures, fetchErr.Reason, status.ResumeAt.Format(time.RFC3339))
		o.onSuspend(status)
		return
	}
	logx.WithContext(ctx).Infof("refresh: %s failed (reason=%s, failures=%d), retry at %s",
		symbol, fetchErr.Reason, status.Failures, status.NextRetryAt.Format(time.RFC3339))
}

// writeJournal appends a cycle record when a journal is configured.
func (o *Orchestrator) writeJournal(strategy string, attempted []string, result quote.BatchResult, started time.Time) {
	if o.journal == nil {
		return
	}
	rec := &journal.CycleRecord{
		Strategy:  strategy,
		Attempted: attempted,
		Duration:  o.nowFn().Sub(started),
		Failures:  map[string]string{},
	}
	for _, symbol := range attempted {
		if out, ok := result[symbol]; ok && out.Quote != nil {
			rec.Succeeded = append(rec.Succeeded, symbol)
		} else if ok && out.Err != nil {
			rec.Failures[symbol] = string(out.Err.Reason)
		} else {
			rec.Failures[symbol] = string(quote.ReasonUnknown)
		}
	}
	if _, err := o.journal.WriteCycle(rec); err != nil {
		logx.Errorf("refresh: write journal: %v", err)
	}
}
