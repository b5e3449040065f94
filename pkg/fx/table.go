package fx

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// DefaultBase is the base currency all stored rates are expressed against.
const DefaultBase = "USD"

// Table is an immutable snapshot of exchange rates relative to Base.
// Rates map a currency code to units of that currency per one unit of Base.
// Tables are replaced wholesale on refresh, never mutated in place.
type Table struct {
	Base      string             // base currency code, e.g. "USD"
	Rates     map[string]float64 // code -> units per base; Base itself is implicit
	FetchedAt time.Time          // when this table was obtained
	Fallback  bool               // true when this is the hardcoded fallback, not live data
}

// Rate returns the stored rate for code. The base currency is always 1.
// Unknown codes fall back to the base rate; that is a data-quality signal
// worth logging, not an error.
func (t *Table) Rate(code string) float64 {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" || c == strings.ToUpper(t.Base) {
		return 1.0
	}
	if rate, ok := t.Rates[c]; ok && rate > 0 {
		return rate
	}
	logx.Infof("fx: unknown currency %q, treating as base %s", code, t.Base)
	return 1.0
}

// Has reports whether code is the base currency or present in the table.
func (t *Table) Has(code string) bool {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == strings.ToUpper(t.Base) {
		return true
	}
	_, ok := t.Rates[c]
	return ok
}

// FallbackTable returns the hardcoded last-resort rate table used before any
// live refresh has ever succeeded. Values are deliberately coarse; they only
// exist so converted aggregates stay plausible when offline.
func FallbackTable() *Table {
	return &Table{
		Base: DefaultBase,
		Rates: map[string]float64{
			"EUR": 0.92,
			"GBP": 0.79,
			"JPY": 148.0,
			"CHF": 0.88,
			"CAD": 1.36,
			"AUD": 1.52,
			"HKD": 7.82,
			"CNY": 7.20,
		},
		Fallback: true,
	}
}

// Holder owns the current rate table as a single swappable snapshot.
// Readers always observe either the previous table or the fully-updated new
// one, never a partial update.
type Holder struct {
	current atomic.Pointer[Table]
}

// NewHolder seeds a holder with the given table, or the hardcoded fallback
// when table is nil.
func NewHolder(table *Table) *Holder {
	h := &Holder{}
	if table == nil {
		table = FallbackTable()
	}
	h.current.Store(table)
	return h
}

// Current returns the active table. Never nil.
func (h *Holder) Current() *Table {
	return h.current.Load()
}

// Replace swaps in a new table. Nil tables are ignored so a failed refresh
// can never erase the last good table.
func (h *Holder) Replace(table *Table) {
	if table == nil {
		return
	}
	h.current.Store(table)
}
