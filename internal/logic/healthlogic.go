package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/svc"
	"ekata-api/internal/types"
)

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() (*types.HealthResponse, error) {
	return &types.HealthResponse{
		Status:        "ok",
		LLMConfigured: l.svcCtx.LLMClient != nil,
		Refreshing:    l.svcCtx.Dashboard.InFlight(),
	}, nil
}
