package portfolio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadHoldingsConfig(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
preferred_currency: gbp
holdings:
  - symbol: AAPL
    quantity: 10
    avg_cost: 150.25
    cost_currency: USD
  - symbol: VOD.L
    quantity: 100
    avg_cost: 15000
    cost_currency: GBX
  - symbol: ^GSPC
    watch_only: true
`))
	require.NoError(t, err)
	require.Equal(t, "GBP", cfg.PreferredCurrency)
	require.Len(t, cfg.Holdings, 3)

	holdings := cfg.ToHoldings()
	require.Equal(t, "VOD.L", holdings[1].Symbol)
	require.Equal(t, "GBX", holdings[1].CostCurrency)
	require.True(t, holdings[2].WatchOnly)
}

func TestToHoldingsAssumesPenceForLondonCosts(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
holdings:
  - symbol: BP.L
    quantity: 10
    avg_cost: 500
    cost_currency: GBP
  - symbol: LLOY.L
    quantity: 50
    avg_cost: 5400
  - symbol: AAPL
    quantity: 1
    avg_cost: 150
`))
	require.NoError(t, err)

	holdings := cfg.ToHoldings()
	// London costs typed in the file follow the pence pricing convention
	require.Equal(t, 5.0, holdings[0].AvgCost)
	require.Equal(t, "GBP", holdings[0].CostCurrency)
	require.Equal(t, 54.0, holdings[1].AvgCost)
	require.Equal(t, "GBP", holdings[1].CostCurrency)
	// non-London entries are untouched
	require.Equal(t, 150.0, holdings[2].AvgCost)
	require.Equal(t, "", holdings[2].CostCurrency)
}

func TestLoadHoldingsConfigDefaultsCurrency(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`holdings: []`))
	require.NoError(t, err)
	require.Equal(t, "USD", cfg.PreferredCurrency)
}

func TestLoadHoldingsConfigRejectsEmptySymbol(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader(`
holdings:
  - quantity: 10
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no symbol")
}

func TestLoadHoldingsConfigRejectsNegativeQuantity(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader(`
holdings:
  - symbol: AAPL
    quantity: -1
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "negative quantity")
}

func TestLoadHoldingsConfigExpandsEnv(t *testing.T) {
	t.Setenv("PORTFOLIO_CCY", "eur")
	cfg, err := LoadConfigFromReader(strings.NewReader(`preferred_currency: ${PORTFOLIO_CCY}`))
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.PreferredCurrency)
}
