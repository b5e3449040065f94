package fx

import (
	"math"
	"strings"
)

// Pence currency codes as reported by quote sources for London listings.
// 1 GBP == 100 GBX.
const (
	penceFactor = 100.0
	gbp         = "GBP"
)

// Convert translates amount from one currency code to another using table.
// Same-currency conversions and zero amounts pass through exactly. NaN and
// infinite amounts pass through unchanged: they mean "no data", and
// multiplying them by a rate would only manufacture garbage.
func Convert(amount float64, from, to string, table *Table) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	if amount == 0 {
		return 0
	}
	f := strings.ToUpper(strings.TrimSpace(from))
	t := strings.ToUpper(strings.TrimSpace(to))
	if f == t || table == nil {
		return amount
	}
	return amount / table.Rate(f) * table.Rate(t)
}

// IsPence reports whether a currency code denotes pence sterling.
func IsPence(code string) bool {
	switch strings.TrimSpace(code) {
	case "GBX", "GBp", "gbx":
		return true
	}
	return false
}

// IsLondonListed reports whether a symbol carries the London Stock Exchange
// suffix, whose instruments are conventionally quoted in pence.
func IsLondonListed(symbol string) bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(symbol)), ".L")
}

// NormalizePence converts a pence-quoted amount to pounds and reports the
// normalized currency code. Amounts already in a major unit pass through.
// This must run exactly once, at data-ingestion time; re-applying it at
// display time would divide by 100 twice.
func NormalizePence(amount float64, currency string) (float64, string) {
	if !IsPence(currency) {
		return amount, currency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount, gbp
	}
	return amount / penceFactor, gbp
}
