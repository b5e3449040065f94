package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockbar/pkg/quote"
)

func TestSingleServesScriptedQuote(t *testing.T) {
	p := New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.SetNow(func() time.Time { return now })
	p.SetQuote("aapl", 187.5, 185.0, "USD")

	q, err := p.Single(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 187.5, q.Price)
	require.Equal(t, 185.0, q.PrevClose)
	require.Equal(t, "USD", q.Currency)
	require.Equal(t, now, q.FetchedAt)
	require.Equal(t, 1, p.Calls())
}

func TestUnknownSymbolIsInvalid(t *testing.T) {
	p := New()
	_, err := p.Single(context.Background(), "NOPE")
	require.Error(t, err)

	var fe *quote.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, quote.ReasonInvalidSymbol, fe.Reason)
	require.ErrorIs(t, err, quote.ErrNoData)
}

func TestScriptedFailureAndRecovery(t *testing.T) {
	p := New()
	p.FailWith("AAPL", quote.ReasonRateLimited)

	_, err := p.Single(context.Background(), "AAPL")
	var fe *quote.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, quote.ReasonRateLimited, fe.Reason)

	// SetQuote clears the scripted failure
	p.SetQuote("AAPL", 100, 99, "USD")
	q, err := p.Single(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 100.0, q.Price)
}

func TestBatchMixedOutcomes(t *testing.T) {
	p := New()
	p.SetQuote("AAPL", 187.5, 185.0, "USD")
	p.FailWith("VOD.L", quote.ReasonTimeout)

	result, err := p.Batch(context.Background(), []string{"AAPL", "VOD.L"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result["AAPL"].Quote)
	require.Nil(t, result["AAPL"].Err)
	require.Nil(t, result["VOD.L"].Quote)
	require.Error(t, result["VOD.L"].Err)
	require.Equal(t, 1, p.Calls())
}
