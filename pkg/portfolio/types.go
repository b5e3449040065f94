package portfolio

import (
	"math"
	"strings"
	"time"

	"stockbar/pkg/fx"
)

// Holding is a user-configured position. Watch-only holdings are tracked for
// price but excluded from every portfolio aggregate.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	CostCurrency string  `json:"cost_currency"`
	WatchOnly    bool    `json:"watch_only"`
}

// Snapshot is the last known market data for one symbol. It is produced only
// by successful fetches; a failed fetch never replaces or erases one.
type Snapshot struct {
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close"`
	Currency  string    `json:"currency"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Valid reports whether the snapshot carries a usable price.
func (s Snapshot) Valid() bool {
	return !math.IsNaN(s.Price) && !math.IsInf(s.Price, 0)
}

// normalize converts an explicit pence cost to pounds when the holding enters
// the book. A converted holding reads GBP afterwards, so feeding the book's
// own holdings back in never re-divides. The looser "London symbols are
// priced in pence" inference lives in Config.ToHoldings, where values come
// straight from the user's file.
func (h Holding) normalize() Holding {
	if cc := strings.TrimSpace(h.CostCurrency); fx.IsPence(cc) {
		h.AvgCost, h.CostCurrency = fx.NormalizePence(h.AvgCost, cc)
	}
	return h
}
