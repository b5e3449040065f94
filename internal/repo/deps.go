package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "stockbar/internal/cache"
	"stockbar/internal/model"
)

// Dependencies bundles the goctl models and shared infrastructure required
// by repository implementations.
type Dependencies struct {
	DBConn sqlx.SqlConn
	Cache  cache.Cache
	TTL    cachekeys.TTLSet

	SnapshotsModel   model.SnapshotsModel
	HoldingsModel    model.HoldingsModel
	SymbolStateModel model.SymbolStateModel
	FxRatesModel     model.FxRatesModel
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Holdings HoldingsRepo
	History  HistoryRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}

	return &Set{
		Holdings: newHoldingsRepo(deps),
		History:  newHistoryRepo(deps),
	}, nil
}
