package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/svc"
	"ekata-api/internal/types"
	"ekata-api/pkg/weather"
)

type WeatherLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewWeatherLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WeatherLogic {
	return &WeatherLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *WeatherLogic) Estates() (*types.EstatesResponse, error) {
	return &types.EstatesResponse{Estates: weather.Estates()}, nil
}

// Current looks up the conditions at the named estate.
func (l *WeatherLogic) Current(req *types.WeatherRequest) (*types.WeatherResponse, error) {
	if strings.TrimSpace(req.Estate) == "" {
		return nil, fmt.Errorf("%w: estate is required", weather.ErrUnknownEstate)
	}
	estate, cond, err := l.svcCtx.Weather.ForEstate(l.ctx, req.Estate)
	if err != nil {
		l.Errorf("weather for %q: %v", req.Estate, err)
		return nil, err
	}
	return &types.WeatherResponse{
		Estate:     estate.Name,
		Latitude:   estate.Latitude,
		Longitude:  estate.Longitude,
		Conditions: *cond,
	}, nil
}
