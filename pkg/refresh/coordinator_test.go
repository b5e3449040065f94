package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func newTestCoordinator() *Coordinator {
	return NewCoordinator(CoordinatorConfig{})
}

func TestNeverFetchedIsEligible(t *testing.T) {
	c := newTestCoordinator()

	require.Equal(t, StatusNeverFetched, c.Status("AAPL", t0).State)
	require.True(t, c.ShouldRefresh("AAPL", t0))
	require.True(t, c.ShouldRetry("AAPL", t0))
}

func TestFreshnessWindows(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess("AAPL", t0)

	tests := []struct {
		name    string
		at      time.Time
		state   Status
		refresh bool
	}{
		{"immediately after success", t0, StatusFresh, false},
		{"just inside freshness", t0.Add(DefaultFreshness - time.Second), StatusFresh, false},
		{"at freshness boundary", t0.Add(DefaultFreshness), StatusStale, true},
		{"just inside max age", t0.Add(DefaultMaxAge - time.Second), StatusStale, true},
		{"at max age boundary", t0.Add(DefaultMaxAge), StatusExpired, true},
		{"long after", t0.Add(24 * time.Hour), StatusExpired, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.state, c.Status("AAPL", tt.at).State)
			require.Equal(t, tt.refresh, c.ShouldRefresh("AAPL", tt.at))
		})
	}
}

func TestBackoffSchedule(t *testing.T) {
	c := newTestCoordinator()

	backoff := DefaultBackoff()
	for i, delay := range backoff {
		state := c.RecordFailure("AAPL", t0)
		require.Equal(t, StatusFailedRecently, state, "failure %d should not suspend", i+1)

		status := c.Status("AAPL", t0)
		require.Equal(t, i+1, status.Failures)
		require.Equal(t, t0.Add(delay), status.NextRetryAt)

		// blocked until the delay elapses, eligible after
		require.False(t, c.ShouldRetry("AAPL", t0.Add(delay-time.Second)))
		require.True(t, c.ShouldRetry("AAPL", t0.Add(delay)))
	}
}

func TestFifthFailureSuspends(t *testing.T) {
	c := newTestCoordinator()

	for i := 0; i < DefaultSuspendThreshold-1; i++ {
		require.Equal(t, StatusFailedRecently, c.RecordFailure("AAPL", t0))
	}
	require.Equal(t, StatusSuspended, c.RecordFailure("AAPL", t0))

	status := c.Status("AAPL", t0)
	require.Equal(t, StatusSuspended, status.State)
	require.Equal(t, t0.Add(DefaultSuspendDuration), status.ResumeAt)

	// suspended symbols are untouchable until the window lapses
	require.False(t, c.ShouldRefresh("AAPL", t0.Add(DefaultSuspendDuration-time.Second)))
	require.False(t, c.ShouldRetry("AAPL", t0.Add(DefaultSuspendDuration-time.Second)))
	require.True(t, c.ShouldRefresh("AAPL", t0.Add(DefaultSuspendDuration)))
}

func TestSuspensionOutlivesExpiry(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess("AAPL", t0)

	// push into suspension; the last success is now far in the past
	later := t0.Add(2 * DefaultMaxAge)
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("AAPL", later)
	}

	// expired by age, but suspension wins
	require.Equal(t, StatusSuspended, c.Status("AAPL", later.Add(time.Minute)).State)
	require.False(t, c.ShouldRefresh("AAPL", later.Add(time.Minute)))
}

func TestRecordSuccessResetsEverything(t *testing.T) {
	c := newTestCoordinator()
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("AAPL", t0)
	}
	require.Equal(t, StatusSuspended, c.Status("AAPL", t0).State)

	at := t0.Add(time.Minute)
	c.RecordSuccess("AAPL", at)

	status := c.Status("AAPL", at)
	require.Equal(t, StatusFresh, status.State)
	require.Zero(t, status.Failures)
	require.True(t, status.ResumeAt.IsZero())
	require.True(t, status.NextRetryAt.IsZero())
}

func TestClearSuspensionAllowsImmediateRetry(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess("AAPL", t0.Add(-time.Minute))
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("AAPL", t0)
	}

	c.ClearSuspension("AAPL")

	require.True(t, c.ShouldRetry("AAPL", t0))
	status := c.Status("AAPL", t0)
	require.Zero(t, status.Failures)
	// the last success survives the override
	require.Equal(t, t0.Add(-time.Minute), status.LastSuccess)
}

func TestSymbolsAreIndependent(t *testing.T) {
	c := newTestCoordinator()
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("AAPL", t0)
	}
	c.RecordSuccess("GOOG", t0)

	require.Equal(t, StatusSuspended, c.Status("AAPL", t0).State)
	require.Equal(t, StatusFresh, c.Status("GOOG", t0).State)
	require.Equal(t, StatusNeverFetched, c.Status("MSFT", t0).State)
}

func TestBackoffResetsAfterElapsedSuspension(t *testing.T) {
	c := newTestCoordinator()
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("AAPL", t0)
	}

	// suspension lapses; ShouldRefresh promotes the entry to retryable
	resume := t0.Add(DefaultSuspendDuration)
	require.True(t, c.ShouldRefresh("AAPL", resume))
	require.Equal(t, StatusReadyToRetry, c.Status("AAPL", resume).State)

	// the next failure re-suspends immediately since the counter is intact
	require.Equal(t, StatusSuspended, c.RecordFailure("AAPL", resume))
}

func TestSymbolCanonicalisation(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess(" aapl ", t0)
	require.Equal(t, StatusFresh, c.Status("AAPL", t0).State)
}

func TestExportRestoreRoundTrip(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess("AAPL", t0)
	c.RecordFailure("VOD.L", t0)
	for i := 0; i < DefaultSuspendThreshold; i++ {
		c.RecordFailure("BTC-USD", t0)
	}

	restored := newTestCoordinator()
	restored.Restore(c.Export())

	at := t0.Add(time.Minute)
	require.Equal(t, StatusFresh, restored.Status("AAPL", at).State)
	require.Equal(t, StatusFailedRecently, restored.Status("VOD.L", at).State)
	require.Equal(t, StatusSuspended, restored.Status("BTC-USD", at).State)
}

func TestClearAll(t *testing.T) {
	c := newTestCoordinator()
	c.RecordSuccess("AAPL", t0)
	c.RecordFailure("VOD.L", t0)

	c.ClearAll()

	require.Equal(t, StatusNeverFetched, c.Status("AAPL", t0).State)
	require.Equal(t, StatusNeverFetched, c.Status("VOD.L", t0).State)
}
