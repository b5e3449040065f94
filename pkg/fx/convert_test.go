package fx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Base: "USD",
		Rates: map[string]float64{
			"EUR": 0.9,
			"GBP": 0.8,
			"JPY": 150.0,
		},
	}
}

func TestConvert(t *testing.T) {
	table := testTable()

	t.Run("same currency passes through", func(t *testing.T) {
		require.Equal(t, 123.45, Convert(123.45, "USD", "USD", table))
		require.Equal(t, 123.45, Convert(123.45, "eur", "EUR", table))
	})

	t.Run("via base", func(t *testing.T) {
		require.InDelta(t, 90.0, Convert(100, "USD", "EUR", table), 1e-9)
		require.InDelta(t, 125.0, Convert(100, "EUR", "USD", table), 1e-9)
	})

	t.Run("cross rate", func(t *testing.T) {
		// 100 GBP -> USD -> JPY
		require.InDelta(t, 100/0.8*150, Convert(100, "GBP", "JPY", table), 1e-9)
	})

	t.Run("round trip is lossless within float error", func(t *testing.T) {
		amount := 1234.56
		there := Convert(amount, "USD", "JPY", table)
		back := Convert(there, "JPY", "USD", table)
		require.InDelta(t, amount, back, 1e-9)
	})

	t.Run("zero amount", func(t *testing.T) {
		require.Equal(t, 0.0, Convert(0, "USD", "EUR", table))
	})

	t.Run("NaN passes through", func(t *testing.T) {
		require.True(t, math.IsNaN(Convert(math.NaN(), "USD", "EUR", table)))
	})

	t.Run("infinity passes through", func(t *testing.T) {
		require.True(t, math.IsInf(Convert(math.Inf(1), "USD", "EUR", table), 1))
	})

	t.Run("unknown currency treated as base", func(t *testing.T) {
		require.Equal(t, 100.0, Convert(100, "XXX", "USD", table))
	})

	t.Run("nil table passes through", func(t *testing.T) {
		require.Equal(t, 100.0, Convert(100, "USD", "EUR", nil))
	})
}

func TestIsPence(t *testing.T) {
	require.True(t, IsPence("GBX"))
	require.True(t, IsPence("GBp"))
	require.True(t, IsPence("gbx"))
	require.False(t, IsPence("GBP"))
	require.False(t, IsPence("USD"))
	require.False(t, IsPence(""))
}

func TestIsLondonListed(t *testing.T) {
	require.True(t, IsLondonListed("VOD.L"))
	require.True(t, IsLondonListed("bp.l"))
	require.False(t, IsLondonListed("AAPL"))
	require.False(t, IsLondonListed("BRK.B"))
}

func TestNormalizePence(t *testing.T) {
	t.Run("pence to pounds once", func(t *testing.T) {
		amount, currency := NormalizePence(15000, "GBX")
		require.Equal(t, 150.0, amount)
		require.Equal(t, "GBP", currency)
	})

	t.Run("GBp variant", func(t *testing.T) {
		amount, currency := NormalizePence(250, "GBp")
		require.Equal(t, 2.5, amount)
		require.Equal(t, "GBP", currency)
	})

	t.Run("major units untouched", func(t *testing.T) {
		amount, currency := NormalizePence(150, "GBP")
		require.Equal(t, 150.0, amount)
		require.Equal(t, "GBP", currency)
	})

	t.Run("NaN keeps its no-data meaning", func(t *testing.T) {
		amount, currency := NormalizePence(math.NaN(), "GBX")
		require.True(t, math.IsNaN(amount))
		require.Equal(t, "GBP", currency)
	})
}

func TestTableRate(t *testing.T) {
	table := testTable()
	require.Equal(t, 1.0, table.Rate("USD"))
	require.Equal(t, 1.0, table.Rate(" usd "))
	require.Equal(t, 0.9, table.Rate("EUR"))
	require.Equal(t, 1.0, table.Rate("XXX"))
	require.Equal(t, 1.0, table.Rate(""))
}

func TestHolderReplace(t *testing.T) {
	h := NewHolder(nil)
	require.True(t, h.Current().Fallback)

	live := testTable()
	h.Replace(live)
	require.Same(t, live, h.Current())

	// nil replacement keeps the last good table
	h.Replace(nil)
	require.Same(t, live, h.Current())
}
