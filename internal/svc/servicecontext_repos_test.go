package svc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockbar/internal/persistence/store"
	"stockbar/internal/repo"
	"stockbar/pkg/fx"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/refresh"
)

type fakeHoldingsRepo struct {
	listed []portfolio.Holding
	synced [][]portfolio.Holding
}

func (f *fakeHoldingsRepo) List(context.Context) ([]portfolio.Holding, error) {
	return f.listed, nil
}

func (f *fakeHoldingsRepo) Sync(_ context.Context, holdings []portfolio.Holding) error {
	f.synced = append(f.synced, holdings)
	return nil
}

type fakeHistoryRepo struct {
	snapshots map[string]portfolio.Snapshot
	suspended []string
}

func (f *fakeHistoryRepo) LatestSnapshots(context.Context, string) (map[string]portfolio.Snapshot, error) {
	return f.snapshots, nil
}

func (f *fakeHistoryRepo) SuspendedSymbols(context.Context, time.Time) ([]string, error) {
	return f.suspended, nil
}

func TestSyncHoldingsMirrorsBookToRepo(t *testing.T) {
	holdingsRepo := &fakeHoldingsRepo{}
	s := &ServiceContext{
		Book:  portfolio.NewBook(),
		Repos: &repo.Set{Holdings: holdingsRepo, History: &fakeHistoryRepo{}},
	}
	s.Book.SetHoldings([]portfolio.Holding{
		{Symbol: "AAPL", Quantity: 10, AvgCost: 150, CostCurrency: "USD"},
		{Symbol: "VOD.L", Quantity: 100, AvgCost: 160, CostCurrency: "GBX"},
	})

	s.syncHoldings(context.Background())

	require.Len(t, holdingsRepo.synced, 1)
	pushed := holdingsRepo.synced[0]
	require.Len(t, pushed, 2)
	// the repo receives the book's normalized view, pounds not pence
	require.Equal(t, "VOD.L", pushed[1].Symbol)
	require.Equal(t, 1.6, pushed[1].AvgCost)
	require.Equal(t, "GBP", pushed[1].CostCurrency)
}

func TestSyncHoldingsSkipsEmptyBook(t *testing.T) {
	holdingsRepo := &fakeHoldingsRepo{}
	s := &ServiceContext{
		Book:  portfolio.NewBook(),
		Repos: &repo.Set{Holdings: holdingsRepo, History: &fakeHistoryRepo{}},
	}

	s.syncHoldings(context.Background())

	require.Empty(t, holdingsRepo.synced)
}

func TestColdStartRestoresSnapshotsFromRepo(t *testing.T) {
	fetched := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	history := &fakeHistoryRepo{
		snapshots: map[string]portfolio.Snapshot{
			"AAPL": {Price: 187.5, PrevClose: 185.0, Currency: "USD", FetchedAt: fetched},
		},
		suspended: []string{"VOD.L"},
	}
	s := &ServiceContext{
		Book:            portfolio.NewBook(),
		Coordinator:     refresh.NewCoordinator(refresh.CoordinatorConfig{}),
		FxHolder:        fx.NewHolder(fx.FallbackTable()),
		StateStore:      store.New(""),
		Repos:           &repo.Set{Holdings: &fakeHoldingsRepo{}, History: history},
		DefaultProvider: "yahoo",
	}

	// no state file configured, so restore falls through to the database
	s.restoreState()

	snap, ok := s.Book.Snapshot("AAPL")
	require.True(t, ok)
	require.Equal(t, 187.5, snap.Price)
}

func TestColdStartWithoutReposIsQuiet(t *testing.T) {
	s := &ServiceContext{
		Book:       portfolio.NewBook(),
		StateStore: store.New(""),
	}

	s.restoreState()

	require.Empty(t, s.Book.Snapshots())
}
