package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockbar/pkg/fx"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/refresh"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.bin")
	s := New(path)

	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := &State{
		Snapshots: map[string]portfolio.Snapshot{
			"AAPL":  {Price: 187.5, PrevClose: 185.0, Currency: "USD", FetchedAt: fetched},
			"VOD.L": {Price: 70.235, PrevClose: math.NaN(), Currency: "GBP", FetchedAt: fetched},
		},
		Coordinator: []refresh.SymbolState{
			{Symbol: "AAPL", LastSuccess: fetched},
			{Symbol: "VOD.L", Failures: 3, NextRetryAt: fetched.Add(5 * time.Minute)},
		},
		Rates: &fx.Table{
			Base:      "USD",
			Rates:     map[string]float64{"GBP": 0.79},
			FetchedAt: fetched,
		},
	}
	require.NoError(t, s.Save(in))
	require.False(t, in.SavedAt.IsZero())

	out, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, in.SavedAt.Unix(), out.SavedAt.Unix())

	require.Equal(t, 187.5, out.Snapshots["AAPL"].Price)
	require.True(t, out.Snapshots["AAPL"].FetchedAt.Equal(fetched))
	require.True(t, math.IsNaN(out.Snapshots["VOD.L"].PrevClose))

	require.Len(t, out.Coordinator, 2)
	require.Equal(t, 3, out.Coordinator[1].Failures)
	require.True(t, out.Coordinator[1].NextRetryAt.Equal(fetched.Add(5*time.Minute)))

	require.NotNil(t, out.Rates)
	require.Equal(t, "USD", out.Rates.Base)
	require.Equal(t, 0.79, out.Rates.Rates["GBP"])
}

func TestLoadMissingFileIsColdStart(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-written.bin"))
	state, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, state)
}

func TestSaveOverwritesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	s := New(path)

	require.NoError(t, s.Save(&State{Snapshots: map[string]portfolio.Snapshot{
		"AAPL": {Price: 100, Currency: "USD"},
	}}))
	require.NoError(t, s.Save(&State{Snapshots: map[string]portfolio.Snapshot{
		"AAPL": {Price: 101, Currency: "USD"},
	}}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 101.0, out.Snapshots["AAPL"].Price)
}

func TestNilStoreAndEmptyPathAreNoOps(t *testing.T) {
	var nilStore *Store
	require.NoError(t, nilStore.Save(&State{}))

	empty := New("")
	require.NoError(t, empty.Save(&State{}))
	state, err := empty.Load()
	require.NoError(t, err)
	require.Nil(t, state)
}
