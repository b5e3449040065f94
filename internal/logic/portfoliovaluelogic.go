package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/internal/svc"
	"stockbar/internal/types"
)

type PortfolioValueLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPortfolioValueLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PortfolioValueLogic {
	return &PortfolioValueLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// PortfolioValue computes the total market value in the requested currency,
// defaulting to the configured display currency.
func (l *PortfolioValueLogic) PortfolioValue(req *types.PortfolioReq) (*types.PortfolioValueResp, error) {
	currency := displayCurrency(req.Currency, l.svcCtx.PreferredCurrency)
	table := l.svcCtx.FxHolder.Current()

	return &types.PortfolioValueResp{
		Currency:  currency,
		Value:     l.svcCtx.Book.NetValue(currency, table),
		DayChange: l.svcCtx.Book.DayChange(currency, table),
		Fallback:  table.Fallback,
	}, nil
}

func displayCurrency(requested, preferred string) string {
	currency := strings.ToUpper(strings.TrimSpace(requested))
	if currency == "" {
		currency = preferred
	}
	return currency
}
