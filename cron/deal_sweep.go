package cron

import (
	"context"
	"fmt"
	"time"

	"dinewise/config"
	"dinewise/services/deal"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DealSweepScheduler runs the deal status sweep on a cron schedule in the
// configured timezone.
type DealSweepScheduler struct {
	cron    *cron.Cron
	sweeper *deal.Sweeper
	logger  *zap.Logger
}

// NewDealSweepScheduler registers the sweep at cfg.DealSweepSpec.
func NewDealSweepScheduler(cfg *config.Config, sweeper *deal.Sweeper, logger *zap.Logger) (*DealSweepScheduler, error) {
	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.SchedulerTimezone, err)
	}

	s := &DealSweepScheduler{
		// SkipIfStillRunning keeps at most one sweep in flight.
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		sweeper: sweeper,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(cfg.DealSweepSpec, s.run); err != nil {
		return nil, fmt.Errorf("invalid deal sweep spec %q: %w", cfg.DealSweepSpec, err)
	}
	return s, nil
}

func (s *DealSweepScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	// Errors are logged by the sweeper; the next tick retries.
	_, _ = s.sweeper.Sweep(ctx)
}

// Start runs one sweep immediately, so deals are correct after downtime, then
// starts the schedule.
func (s *DealSweepScheduler) Start() {
	s.logger.Info("deal status sweep scheduled", zap.Int("entries", len(s.cron.Entries())))
	go s.run()
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *DealSweepScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("deal sweep still running at shutdown")
	}
}
