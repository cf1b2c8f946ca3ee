package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/pkg/dashboard"
)

// Refresher starts a dashboard refresh without waiting for it.
type Refresher interface {
	Trigger(ctx context.Context) error
}

// Scheduler fires dashboard refreshes on a cron spec.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Ctx       context.Context

	spec string
}

// NewScheduler builds a scheduler for spec. Specs carry a seconds field,
// e.g. "0 */30 * * * *".
func NewScheduler(ctx context.Context, refresher Refresher, spec string) (*Scheduler, error) {
	s := &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: refresher,
		Ctx:       ctx,
		spec:      spec,
	}
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("register refresh task %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logx.Infof("scheduler started: refresh=%q", s.spec)
}

// Stop stops the scheduler and waits for a running tick to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logx.Info("scheduler stopped")
}

func (s *Scheduler) tick() { s.RunNow() }

// RunNow fires one refresh immediately and reports whether it started.
// A refresh already in flight is skipped, not queued.
func (s *Scheduler) RunNow() bool {
	err := s.Refresher.Trigger(s.Ctx)
	switch {
	case err == nil:
		logx.WithContext(s.Ctx).Info("scheduled refresh triggered")
		return true
	case errors.Is(err, dashboard.ErrRefreshInFlight):
		logx.WithContext(s.Ctx).Infof("scheduled refresh skipped: %v", err)
	default:
		logx.WithContext(s.Ctx).Errorf("scheduled refresh: %v", err)
	}
	return false
}
