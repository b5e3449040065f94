package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"stockbar/internal/logic"
	"stockbar/internal/svc"
	"stockbar/internal/types"
)

func PortfolioValueHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PortfolioReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewPortfolioValueLogic(r.Context(), svcCtx)
		resp, err := l.PortfolioValue(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
