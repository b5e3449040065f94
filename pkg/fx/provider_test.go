package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	table *Table
	err   error
	calls int
}

func (s *scriptedSource) FetchRates(ctx context.Context) (*Table, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func TestRefreshOnceReplacesTable(t *testing.T) {
	live := &Table{Base: "USD", Rates: map[string]float64{"EUR": 0.91}, FetchedAt: time.Now()}
	source := &scriptedSource{table: live}
	r := NewRefresher(source, nil, time.Hour)

	require.True(t, r.Holder().Current().Fallback)
	require.NoError(t, r.RefreshOnce(context.Background()))
	require.Same(t, live, r.Holder().Current())
}

func TestRefreshOnceKeepsPreviousOnFailure(t *testing.T) {
	live := &Table{Base: "USD", Rates: map[string]float64{"EUR": 0.91}}
	source := &scriptedSource{table: live}
	r := NewRefresher(source, nil, time.Hour)
	require.NoError(t, r.RefreshOnce(context.Background()))

	source.err = errors.New("rate service down")
	require.Error(t, r.RefreshOnce(context.Background()))

	// last known good survives
	require.Same(t, live, r.Holder().Current())
	require.False(t, r.Holder().Current().Fallback)
}
