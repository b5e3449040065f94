package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/internal/svc"
	"stockbar/internal/types"
)

type CacheClearLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCacheClearLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CacheClearLogic {
	return &CacheClearLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// CacheClear wipes all coordinator bookkeeping so every symbol is treated as
// never fetched on the next refresh cycle. Quote snapshots are kept; they
// will be overwritten as fresh data arrives.
func (l *CacheClearLogic) CacheClear() (*types.CacheClearResp, error) {
	l.svcCtx.Coordinator.ClearAll()
	l.Infof("coordinator state cleared")
	return &types.CacheClearResp{Cleared: true}, nil
}
