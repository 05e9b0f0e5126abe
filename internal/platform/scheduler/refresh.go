// Package scheduler runs the periodic dataset refresh.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dividend_dashboard/internal/config"
	"dividend_dashboard/internal/feature/dividends/domain/entity"
)

// SharedCache is the cross-replica copy of the dataset.
type SharedCache interface {
	Invalidate(ctx context.Context) error
}

// Dashboard is the in-process dataset holder.
type Dashboard interface {
	Refresh()
	Dataset(ctx context.Context) ([]entity.Dividend, error)
}

// Scheduler invalidates the cached dataset on a cron schedule and warms it again.
type Scheduler struct {
	cron      *cron.Cron
	shared    SharedCache
	dashboard Dashboard
	ctx       context.Context
}

// NewScheduler creates a Scheduler. shared may be nil when no Redis is configured.
func NewScheduler(ctx context.Context, dashboard Dashboard, shared SharedCache) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithParser(config.CronParser)),
		shared:    shared,
		dashboard: dashboard,
		ctx:       ctx,
	}
}

// Register schedules the refresh job. An empty spec disables it.
func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.RefreshNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	zap.L().Info("dataset refresh scheduled", zap.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.L().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

// RefreshNow drops both cache levels and fetches the dataset again.
// A failed fetch is logged; the next request retries it.
func (s *Scheduler) RefreshNow() {
	if s.shared != nil {
		if err := s.shared.Invalidate(s.ctx); err != nil {
			zap.L().Warn("failed to invalidate shared dataset", zap.Error(err))
		}
	}
	s.dashboard.Refresh()

	ds, err := s.dashboard.Dataset(s.ctx)
	if err != nil {
		zap.L().Error("dataset refresh failed", zap.Error(err))
		return
	}
	zap.L().Info("dataset refreshed", zap.Int("records", len(ds)))
}
