// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"stockbar/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/status/:symbol",
				Handler: SymbolStatusHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/portfolio/value",
				Handler: PortfolioValueHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/portfolio/gain",
				Handler: PortfolioGainHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/symbols/:symbol/retry",
				Handler: RetryHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/cache/clear",
				Handler: CacheClearHandler(serverCtx),
			},
		},
	)
}
