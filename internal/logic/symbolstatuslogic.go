package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockbar/internal/svc"
	"stockbar/internal/types"
)

type SymbolStatusLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSymbolStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SymbolStatusLogic {
	return &SymbolStatusLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// SymbolStatus reports the refresh state for one symbol plus its last known
// price when a snapshot exists.
func (l *SymbolStatusLogic) SymbolStatus(req *types.SymbolStatusReq) (*types.SymbolStatusResp, error) {
	status := l.svcCtx.Coordinator.Status(req.Symbol, time.Now())

	resp := &types.SymbolStatusResp{
		Symbol:      status.Symbol,
		State:       string(status.State),
		Failures:    status.Failures,
		LastSuccess: formatTime(status.LastSuccess),
		NextRetryAt: formatTime(status.NextRetryAt),
		ResumeAt:    formatTime(status.ResumeAt),
	}
	if snap, ok := l.svcCtx.Book.Snapshot(status.Symbol); ok && snap.Valid() {
		resp.Price = snap.Price
		resp.Currency = snap.Currency
	}
	return resp, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
