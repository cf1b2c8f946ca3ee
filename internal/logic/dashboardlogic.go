package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/svc"
	"ekata-api/internal/types"
	"ekata-api/pkg/dashboard"
)

type DashboardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDashboardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DashboardLogic {
	return &DashboardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Snapshot returns the current state of the three feeds.
func (l *DashboardLogic) Snapshot() (*dashboard.Snapshot, error) {
	snap := l.svcCtx.Dashboard.Snapshot()
	return &snap, nil
}

// Refresh starts a cycle in the background. It fails with
// dashboard.ErrRefreshInFlight while another triggered cycle runs.
func (l *DashboardLogic) Refresh() (*types.RefreshResponse, error) {
	if err := l.svcCtx.Dashboard.Trigger(l.ctx); err != nil {
		return nil, err
	}
	l.Info("dashboard refresh triggered")
	return &types.RefreshResponse{Status: "accepted"}, nil
}
