package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"ekata-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	httpx.SetErrorHandlerCtx(ErrorHandler)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/generate",
				Handler: GenerateHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/dashboard",
				Handler: DashboardHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/dashboard/refresh",
				Handler: RefreshHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/estates",
				Handler: EstatesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/weather",
				Handler: WeatherHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
