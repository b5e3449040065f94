package cache

import (
	"fmt"
	"strings"
	"time"

	"stockbar/internal/config"
)

// Namespace is the Redis key prefix for the Stockbar application.
const Namespace = "stockbar"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Snapshot Keys ----------------------------------------------------------

// SnapshotLatestKey returns the latest snapshot key without provider scoping.
func SnapshotLatestKey(symbol string) string {
	return formatKey("snapshot", "latest", symbol)
}

// SnapshotByProviderKey returns the latest snapshot key scoped by provider.
func SnapshotByProviderKey(provider, symbol string) string {
	return formatKey("snapshot", "latest", provider, symbol)
}

// --- Coordinator Keys -------------------------------------------------------

// SymbolStateKey stores one symbol's refresh bookkeeping record.
func SymbolStateKey(symbol string) string {
	return formatKey("symbol", "state", symbol)
}

// --- FX Keys ----------------------------------------------------------------

// FxTableKey stores the serialized exchange-rate table.
func FxTableKey(base string) string {
	return formatKey("fx", "table", base)
}

// --- Portfolio Keys ---------------------------------------------------------

// PortfolioValueKey caches the computed net value per display currency.
func PortfolioValueKey(currency string) string {
	return formatKey("portfolio", "value", currency)
}

// PortfolioGainKey caches the computed net gain per display currency.
func PortfolioGainKey(currency string) string {
	return formatKey("portfolio", "gain", currency)
}

// --- TTL Helpers ------------------------------------------------------------

// SnapshotTTL returns the short-lived TTL for snapshot keys.
func SnapshotTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// SymbolStateTTL returns the TTL for coordinator state mirrors.
func SymbolStateTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// FxTableTTL returns the TTL for cached rate tables.
func FxTableTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// PortfolioTTL returns the TTL for computed portfolio aggregates.
func PortfolioTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLShort, 0.5)
}

// FormatCacheKey is exported for dynamic key construction when patterns
// are not covered by helpers.
func FormatCacheKey(parts ...string) string {
	return formatKey(parts...)
}

// BuildKeyWithSuffix appends an arbitrary suffix to an existing key.
func BuildKeyWithSuffix(baseKey, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		return baseKey
	}
	return fmt.Sprintf("%s:%s", baseKey, strings.TrimSpace(suffix))
}
