package deal

import (
	"context"
	"errors"
	"time"

	dealRepo "dinewise/database/repository/deal"
	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap"
)

// Sweeper moves deal statuses forward as their validity windows open and close.
type Sweeper struct {
	Deals  dealRepo.DealRepository
	Logger *zap.Logger
	Now    func() time.Time
}

// SweepResult counts the transitions made by one sweep.
type SweepResult struct {
	Activated int64
	Expired   int64
}

// Sweep expires deals whose window has closed, then activates deals whose
// window is open. Both steps only touch rows whose status is behind the
// clock, so a repeated sweep at the same instant changes nothing.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var res SweepResult
	var errs []error

	expired, err := s.Deals.ExpireDue(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	res.Expired = expired

	activated, err := s.Deals.ActivateDue(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	res.Activated = activated

	utils.DealStatusTransitions.WithLabelValues(string(models.DealExpired)).Add(float64(expired))
	utils.DealStatusTransitions.WithLabelValues(string(models.DealActive)).Add(float64(activated))

	if err := errors.Join(errs...); err != nil {
		s.Logger.Error("deal status sweep failed", zap.Error(err))
		return res, err
	}
	if res.Activated > 0 || res.Expired > 0 {
		s.Logger.Info("deal status sweep",
			zap.Int64("activated", res.Activated),
			zap.Int64("expired", res.Expired))
	}
	return res, nil
}
