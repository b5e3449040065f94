package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/internal/svc"
	"stockbar/internal/types"
)

type PortfolioGainLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPortfolioGainLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PortfolioGainLogic {
	return &PortfolioGainLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// PortfolioGain computes unrealized gain against average cost in the
// requested currency.
func (l *PortfolioGainLogic) PortfolioGain(req *types.PortfolioReq) (*types.PortfolioGainResp, error) {
	currency := displayCurrency(req.Currency, l.svcCtx.PreferredCurrency)
	table := l.svcCtx.FxHolder.Current()

	return &types.PortfolioGainResp{
		Currency: currency,
		Gain:     l.svcCtx.Book.NetGain(currency, table),
		Fallback: table.Fallback,
	}, nil
}
