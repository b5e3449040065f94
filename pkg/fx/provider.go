package fx

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// RateSource fetches a complete rate table from an external service.
type RateSource interface {
	FetchRates(ctx context.Context) (*Table, error)
}

// Refresher periodically replaces the holder's table from a rate source,
// keeping the previous table whenever a refresh fails.
type Refresher struct {
	source   RateSource
	holder   *Holder
	interval time.Duration
}

// NewRefresher wires a refresher. A nil holder gets a fresh fallback-seeded one.
func NewRefresher(source RateSource, holder *Holder, interval time.Duration) *Refresher {
	if holder == nil {
		holder = NewHolder(nil)
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Refresher{source: source, holder: holder, interval: interval}
}

// Holder exposes the table holder the refresher maintains.
func (r *Refresher) Holder() *Holder { return r.holder }

// RefreshOnce fetches a new table and swaps it in. On failure the previous
// table (last known good, or the fallback) stays active.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	table, err := r.source.FetchRates(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("fx: rate refresh failed, keeping previous table (fallback=%v): %v",
			r.holder.Current().Fallback, err)
		return err
	}
	r.holder.Replace(table)
	logx.WithContext(ctx).Infof("fx: rate table refreshed, base=%s currencies=%d", table.Base, len(table.Rates))
	return nil
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled.
func (r *Refresher) Run(ctx context.Context) {
	_ = r.RefreshOnce(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.RefreshOnce(ctx)
		}
	}
}
