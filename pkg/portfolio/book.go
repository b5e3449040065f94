package portfolio

import (
	"math"
	"strings"
	"sync"

	"stockbar/pkg/fx"
)

// Book holds the in-memory portfolio state: configured holdings plus the
// last known snapshot per symbol. All access is serialized through one
// mutex; snapshot application and aggregate reads never race.
type Book struct {
	mu        sync.RWMutex
	holdings  []Holding
	snapshots map[string]Snapshot
}

// NewBook constructs an empty book.
func NewBook() *Book {
	return &Book{snapshots: make(map[string]Snapshot)}
}

// snapshotKey canonicalizes a symbol for snapshot storage, matching the
// coordinator's canonical form so a lowercase-configured holding and an
// uppercase status query land on the same entry.
func snapshotKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// SetHoldings replaces the configured holdings, applying entry-time
// currency normalization. Snapshots for symbols no longer held are kept;
// they are harmless and a re-added symbol starts with data.
func (b *Book) SetHoldings(holdings []Holding) {
	normalized := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if strings.TrimSpace(h.Symbol) == "" {
			continue
		}
		normalized = append(normalized, h.normalize())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdings = normalized
}

// Holdings returns a copy of the configured holdings.
func (b *Book) Holdings() []Holding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Holding, len(b.holdings))
	copy(out, b.holdings)
	return out
}

// Symbols returns the held symbols in a stable, deduplicated order. The
// staggered refresh cursor depends on this order being deterministic.
func (b *Book) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[string]bool, len(b.holdings))
	out := make([]string, 0, len(b.holdings))
	for _, h := range b.holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	return out
}

// ApplySnapshot records a successful fetch result for symbol, normalizing
// pence quotes to pounds exactly once at this ingestion point.
func (b *Book) ApplySnapshot(symbol string, snap Snapshot) {
	if fx.IsPence(snap.Currency) {
		snap.Price, _ = fx.NormalizePence(snap.Price, snap.Currency)
		snap.PrevClose, snap.Currency = fx.NormalizePence(snap.PrevClose, snap.Currency)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots[snapshotKey(symbol)] = snap
}

// Snapshot returns the last known market data for symbol, if any. The
// lookup is case-insensitive.
func (b *Book) Snapshot(symbol string) (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.snapshots[snapshotKey(symbol)]
	return snap, ok
}

// Snapshots returns a copy of every stored snapshot, keyed by symbol.
// Used by the persistence layer; the returned map is the caller's to keep.
func (b *Book) Snapshots() map[string]Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Snapshot, len(b.snapshots))
	for symbol, snap := range b.snapshots {
		out[symbol] = snap
	}
	return out
}

// RestoreSnapshots loads previously persisted snapshots, typically at
// startup. Existing entries for the same symbol are overwritten.
func (b *Book) RestoreSnapshots(snapshots map[string]Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for symbol, snap := range snapshots {
		b.snapshots[snapshotKey(symbol)] = snap
	}
}

// NetValue sums quantity*price over the non-watch-only holdings, each
// converted to preferred before summing. Holdings without a usable snapshot
// are excluded rather than poisoning the sum.
func (b *Book) NetValue(preferred string, table *fx.Table) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, h := range b.holdings {
		if h.WatchOnly {
			continue
		}
		snap, ok := b.snapshots[snapshotKey(h.Symbol)]
		if !ok || !snap.Valid() {
			continue
		}
		total += fx.Convert(h.Quantity*snap.Price, snap.Currency, preferred, table)
	}
	return total
}

// NetGain sums quantity*(price-avgCost) over the non-watch-only holdings in
// the preferred currency. The average cost is brought into the snapshot's
// currency before subtraction so mixed-currency cost entries stay honest.
func (b *Book) NetGain(preferred string, table *fx.Table) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, h := range b.holdings {
		if h.WatchOnly {
			continue
		}
		snap, ok := b.snapshots[snapshotKey(h.Symbol)]
		if !ok || !snap.Valid() {
			continue
		}
		cost := fx.Convert(h.AvgCost, h.CostCurrency, snap.Currency, table)
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			continue
		}
		gain := h.Quantity * (snap.Price - cost)
		total += fx.Convert(gain, snap.Currency, preferred, table)
	}
	return total
}

// DayChange sums quantity*(price-prevClose) over the non-watch-only
// holdings in the preferred currency.
func (b *Book) DayChange(preferred string, table *fx.Table) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, h := range b.holdings {
		if h.WatchOnly {
			continue
		}
		snap, ok := b.snapshots[snapshotKey(h.Symbol)]
		if !ok || !snap.Valid() {
			continue
		}
		if math.IsNaN(snap.PrevClose) || math.IsInf(snap.PrevClose, 0) {
			continue
		}
		total += fx.Convert(h.Quantity*(snap.Price-snap.PrevClose), snap.Currency, preferred, table)
	}
	return total
}
