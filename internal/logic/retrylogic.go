package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/internal/svc"
	"stockbar/internal/types"
)

type RetryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRetryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RetryLogic {
	return &RetryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Retry lifts any suspension on the symbol and fetches it immediately.
func (l *RetryLogic) Retry(req *types.RetryReq) (*types.RetryResp, error) {
	status := l.svcCtx.Orchestrator.RetryNow(l.ctx, req.Symbol)
	return &types.RetryResp{
		Symbol: status.Symbol,
		State:  string(status.State),
	}, nil
}
