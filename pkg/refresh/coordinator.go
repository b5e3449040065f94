package refresh

import (
	"strings"
	"sync"
	"time"
)

// Status describes a symbol's fetch-eligibility state.
type Status string

const (
	StatusNeverFetched   Status = "never-fetched"
	StatusFresh          Status = "fresh"
	StatusStale          Status = "stale"
	StatusExpired        Status = "expired"
	StatusFailedRecently Status = "failed-recently"
	StatusReadyToRetry   Status = "ready-to-retry"
	StatusSuspended      Status = "suspended"
)

// Default coordinator policy. The backoff schedule is indexed by the
// consecutive-failure count and capped at its last entry.
const (
	DefaultFreshness        = 15 * time.Minute
	DefaultMaxAge           = 60 * time.Minute
	DefaultSuspendThreshold = 5
	DefaultSuspendDuration  = time.Hour
)

// DefaultBackoff returns the default failure retry schedule.
func DefaultBackoff() []time.Duration {
	return []time.Duration{60 * time.Second, 120 * time.Second, 300 * time.Second, 600 * time.Second}
}

// CoordinatorConfig tunes the freshness windows and failure policy.
type CoordinatorConfig struct {
	Freshness        time.Duration   // fresh -> stale after this much time since last success
	MaxAge           time.Duration   // stale -> expired after this much time since last success
	SuspendThreshold int             // consecutive failures before suspension
	SuspendDuration  time.Duration   // how long a suspension lasts
	Backoff          []time.Duration // retry delays indexed by failure count, capped at last
}

func (c CoordinatorConfig) withDefaults() CoordinatorConfig {
	if c.Freshness <= 0 {
		c.Freshness = DefaultFreshness
	}
	if c.MaxAge <= c.Freshness {
		c.MaxAge = DefaultMaxAge
	}
	if c.SuspendThreshold <= 0 {
		c.SuspendThreshold = DefaultSuspendThreshold
	}
	if c.SuspendDuration <= 0 {
		c.SuspendDuration = DefaultSuspendDuration
	}
	if len(c.Backoff) == 0 {
		c.Backoff = DefaultBackoff()
	}
	return c
}

// SymbolStatus is the coordinator's answer to a status query. Pure data;
// safe to hand to the UI layer.
type SymbolStatus struct {
	Symbol      string    `json:"symbol"`
	State       Status    `json:"state"`
	Failures    int       `json:"failures"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	NextRetryAt time.Time `json:"next_retry_at,omitempty"`
	ResumeAt    time.Time `json:"resume_at,omitempty"`
}

// symbolEntry is the per-symbol bookkeeping record. Zero value means the
// symbol has never been fetched.
type symbolEntry struct {
	lastSuccess    time.Time
	lastFailure    time.Time
	failures       int
	nextRetryAt    time.Time
	suspendedUntil time.Time
}

// Coordinator is the single source of truth for "should we fetch symbol S
// right now". It performs no I/O; all methods are synchronous bookkeeping
// serialized by one mutex. Symbols are tracked independently: one symbol's
// failures never affect another's eligibility.
type Coordinator struct {
	mu      sync.Mutex
	cfg     CoordinatorConfig
	entries map[string]*symbolEntry
}

// NewCoordinator constructs a coordinator with the given policy. Zero-valued
// config fields fall back to the defaults.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	return &Coordinator{
		cfg:     cfg.withDefaults(),
		entries: make(map[string]*symbolEntry),
	}
}

func canonical(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// stateAt derives the status of an entry at a moment in time. Pure; never
// mutates. Suspension takes precedence over age: an expired symbol that is
// also suspended stays suspended until the suspension lapses.
func (c *Coordinator) stateAt(e *symbolEntry, now time.Time) Status {
	if e == nil {
		return StatusNeverFetched
	}
	if !e.suspendedUntil.IsZero() {
		if now.Before(e.suspendedUntil) {
			return StatusSuspended
		}
		return StatusReadyToRetry
	}
	if e.failures > 0 {
		if now.Before(e.nextRetryAt) {
			return StatusFailedRecently
		}
		return StatusReadyToRetry
	}
	if e.lastSuccess.IsZero() {
		return StatusNeverFetched
	}
	age := now.Sub(e.lastSuccess)
	switch {
	case age < c.cfg.Freshness:
		return StatusFresh
	case age < c.cfg.MaxAge:
		return StatusStale
	default:
		return StatusExpired
	}
}

// ShouldRefresh reports whether symbol is eligible to fetch at now. An
// elapsed suspension is promoted to ready-to-retry as a side effect, so a
// subsequent failure restarts the backoff schedule from the recorded count.
func (c *Coordinator) ShouldRefresh(symbol string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[canonical(symbol)]
	state := c.stateAt(e, now)
	if e != nil && !e.suspendedUntil.IsZero() && state == StatusReadyToRetry {
		e.suspendedUntil = time.Time{}
		e.nextRetryAt = time.Time{}
	}
	switch state {
	case StatusNeverFetched, StatusStale, StatusExpired, StatusReadyToRetry:
		return true
	default:
		return false
	}
}

// ShouldRetry is the narrower failure-path check: true only when the symbol
// was never fetched or its failure-recency delay has elapsed. Unlike
// ShouldRefresh it never considers staleness, and an active suspension
// always answers false.
func (c *Coordinator) ShouldRetry(symbol string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[canonical(symbol)]
	if e == nil {
		return true
	}
	if !e.suspendedUntil.IsZero() {
		return !now.Before(e.suspendedUntil)
	}
	if e.failures == 0 {
		return true
	}
	return !now.Before(e.nextRetryAt)
}

// RecordSuccess marks a successful fetch at the given time: the failure
// counter resets to zero and any suspension clears, from any prior state.
func (c *Coordinator) RecordSuccess(symbol string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(symbol)
	e.lastSuccess = at
	e.lastFailure = time.Time{}
	e.failures = 0
	e.nextRetryAt = time.Time{}
	e.suspendedUntil = time.Time{}
}

// RecordFailure marks a failed fetch at the given time and returns the
// resulting state so callers can surface a fresh suspension. Reaching the
// suspension threshold trips the circuit breaker; otherwise the next retry
// time follows the backoff schedule indexed by the failure count.
func (c *Coordinator) RecordFailure(symbol string, at time.Time) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(symbol)
	e.failures++
	e.lastFailure = at
	if e.failures >= c.cfg.SuspendThreshold {
		e.suspendedUntil = at.Add(c.cfg.SuspendDuration)
		e.nextRetryAt = time.Time{}
		return StatusSuspended
	}
	idx := e.failures - 1
	if idx >= len(c.cfg.Backoff) {
		idx = len(c.cfg.Backoff) - 1
	}
	e.nextRetryAt = at.Add(c.cfg.Backoff[idx])
	return StatusFailedRecently
}

// Status answers a pure status query for symbol at now. No side effects.
func (c *Coordinator) Status(symbol string, now time.Time) SymbolStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := canonical(symbol)
	e := c.entries[key]
	status := SymbolStatus{
		Symbol: key,
		State:  c.stateAt(e, now),
	}
	if e != nil {
		status.Failures = e.failures
		status.LastSuccess = e.lastSuccess
		status.NextRetryAt = e.nextRetryAt
		status.ResumeAt = e.suspendedUntil
	}
	return status
}

// ClearSuspension is the manual "retry now" override: it resets the failure
// counter and lifts any suspension immediately, keeping the last-success
// timestamp intact.
func (c *Coordinator) ClearSuspension(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[canonical(symbol)]
	if e == nil {
		return
	}
	e.failures = 0
	e.lastFailure = time.Time{}
	e.nextRetryAt = time.Time{}
	e.suspendedUntil = time.Time{}
}

// ClearAll forgets every tracked symbol.
func (c *Coordinator) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*symbolEntry)
}

// entry returns the tracked record for symbol, creating it on first use.
// Must be called with c.mu held.
func (c *Coordinator) entry(symbol string) *symbolEntry {
	key := canonical(symbol)
	e, ok := c.entries[key]
	if !ok {
		e = &symbolEntry{}
		c.entries[key] = e
	}
	return e
}
