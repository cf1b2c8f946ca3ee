package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"ekata-api/internal/logic"
	"ekata-api/internal/svc"
	"ekata-api/internal/types"
)

func EstatesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewWeatherLogic(r.Context(), svcCtx)
		resp, err := l.Estates()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func WeatherHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.WeatherRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewWeatherLogic(r.Context(), svcCtx)
		resp, err := l.Current(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
