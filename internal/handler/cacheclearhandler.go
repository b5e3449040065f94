package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"stockbar/internal/logic"
	"stockbar/internal/svc"
)

func CacheClearHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewCacheClearLogic(r.Context(), svcCtx)
		resp, err := l.CacheClear()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
