package refresh

import "time"

// SymbolState is the serializable form of one symbol's coordinator record.
// The persistence layer round-trips these across process restarts; the
// coordinator itself makes no assumption about the storage technology.
type SymbolState struct {
	Symbol         string    `json:"symbol" msgpack:"symbol"`
	LastSuccess    time.Time `json:"last_success" msgpack:"last_success"`
	LastFailure    time.Time `json:"last_failure" msgpack:"last_failure"`
	Failures       int       `json:"failures" msgpack:"failures"`
	NextRetryAt    time.Time `json:"next_retry_at" msgpack:"next_retry_at"`
	SuspendedUntil time.Time `json:"suspended_until" msgpack:"suspended_until"`
}

// Export copies every tracked symbol's state. The result is a consistent
// point-in-time view; no entry is ever exported mid-transition.
func (c *Coordinator) Export() []SymbolState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SymbolState, 0, len(c.entries))
	for symbol, e := range c.entries {
		out = append(out, SymbolState{
			Symbol:         symbol,
			LastSuccess:    e.lastSuccess,
			LastFailure:    e.lastFailure,
			Failures:       e.failures,
			NextRetryAt:    e.nextRetryAt,
			SuspendedUntil: e.suspendedUntil,
		})
	}
	return out
}

// Restore loads previously exported state, replacing any current record for
// the same symbols. Unknown symbols are simply added.
func (c *Coordinator) Restore(states []SymbolState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range states {
		key := canonical(s.Symbol)
		if key == "" {
			continue
		}
		c.entries[key] = &symbolEntry{
			lastSuccess:    s.LastSuccess,
			lastFailure:    s.LastFailure,
			failures:       s.Failures,
			nextRetryAt:    s.NextRetryAt,
			suspendedUntil: s.SuspendedUntil,
		}
	}
}
