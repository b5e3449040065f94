package repo

import (
	"context"
	"strings"

	"stockbar/internal/model"
	"stockbar/pkg/portfolio"
)

// HoldingsRepo reads and writes the user's positions in Postgres. The
// holdings file stays authoritative; Sync pushes the file contents to the
// database so other tools can query them.
type HoldingsRepo interface {
	List(ctx context.Context) ([]portfolio.Holding, error)
	Sync(ctx context.Context, holdings []portfolio.Holding) error
}

type holdingsRepo struct {
	model model.HoldingsModel
}

func newHoldingsRepo(deps Dependencies) HoldingsRepo {
	return &holdingsRepo{model: deps.HoldingsModel}
}

func (r *holdingsRepo) List(ctx context.Context) ([]portfolio.Holding, error) {
	if r.model == nil {
		return nil, nil
	}
	rows, err := r.model.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	holdings := make([]portfolio.Holding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, portfolio.Holding{
			Symbol:       row.Symbol,
			Quantity:     row.Quantity,
			AvgCost:      row.AvgCost,
			CostCurrency: row.CostCurrency,
			WatchOnly:    row.WatchOnly,
		})
	}
	return holdings, nil
}

func (r *holdingsRepo) Sync(ctx context.Context, holdings []portfolio.Holding) error {
	if r.model == nil {
		return nil
	}
	var lastErr error
	for _, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" {
			continue
		}
		row := &model.Holding{
			Symbol:       symbol,
			Quantity:     h.Quantity,
			AvgCost:      h.AvgCost,
			CostCurrency: h.CostCurrency,
			WatchOnly:    h.WatchOnly,
		}
		if err := r.model.Upsert(ctx, row); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
