//go:build integration
// +build integration

package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "stockbar/internal/config"
	"stockbar/internal/repo"
	"stockbar/internal/svc"
	"stockbar/pkg/confkit"
	"stockbar/pkg/portfolio"
)

func newIntegrationServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	cfg := appconfig.MustLoad(confkit.MustProjectPath("etc/stockbar.yaml"))
	return svc.NewServiceContext(cfg)
}

func requireRepos(t *testing.T, svcCtx *svc.ServiceContext) *repo.Set {
	t.Helper()
	if svcCtx.DBConn == nil {
		t.Skip("postgres not configured; skipping integration test")
	}
	set, err := repo.New(repo.Dependencies{
		DBConn:           svcCtx.DBConn,
		Cache:            svcCtx.Cache,
		TTL:              svcCtx.TTL,
		SnapshotsModel:   svcCtx.SnapshotsModel,
		HoldingsModel:    svcCtx.HoldingsModel,
		SymbolStateModel: svcCtx.SymbolStateModel,
		FxRatesModel:     svcCtx.FxRatesModel,
	})
	require.NoError(t, err)
	return set
}

func TestPostgresConnectivity(t *testing.T) {
	svcCtx := newIntegrationServiceContext(t)
	if svcCtx.DBConn == nil {
		t.Skip("postgres not configured; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var one int
	err := svcCtx.DBConn.QueryRowCtx(ctx, &one, "SELECT 1")
	assert.NoError(t, err, "postgres connectivity check failed")
	assert.Equal(t, 1, one, "postgres returned unexpected value")
}

func TestHoldingsSyncRoundTrip(t *testing.T) {
	svcCtx := newIntegrationServiceContext(t)
	repos := requireRepos(t, svcCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	seed := []portfolio.Holding{
		{Symbol: "ITEST", Quantity: 3, AvgCost: 10.5, CostCurrency: "USD"},
	}
	require.NoError(t, repos.Holdings.Sync(ctx, seed))

	stored, err := repos.Holdings.List(ctx)
	require.NoError(t, err)

	var found bool
	for _, h := range stored {
		if h.Symbol == "ITEST" {
			found = true
			assert.Equal(t, 3.0, h.Quantity)
			assert.Equal(t, 10.5, h.AvgCost)
		}
	}
	assert.True(t, found, "synced holding not returned by List")
}
