package deal

import (
	"context"
	"time"

	"dinewise/models"
	"dinewise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultDealService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create adds a deal to one of the owner's businesses. Its status is derived
// from the current clock.
func (s *DefaultDealService) Create(ctx context.Context, ownerID string, in DealInput) (*models.Deal, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := ValidateWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	business, err := s.Businesses.GetByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if business.OwnerID != ownerID {
		return nil, utils.Forbidden("you can only create deals for your own businesses")
	}

	now := s.now()
	d := &models.Deal{
		ID:         uuid.New().String(),
		BusinessID: business.ID,
		OwnerID:    ownerID,
		CreatedAt:  now,
	}
	s.apply(d, in, now)

	if err := s.Deals.Create(ctx, d); err != nil {
		return nil, err
	}
	s.Logger.Info("deal created",
		zap.String("dealId", d.ID),
		zap.String("businessId", d.BusinessID),
		zap.String("status", string(d.Status)))
	return d, nil
}

// Update replaces the editable fields. The business and owner never change.
func (s *DefaultDealService) Update(ctx context.Context, ownerID, dealID string, in DealInput) (*models.Deal, error) {
	d, err := s.owned(ctx, ownerID, dealID)
	if err != nil {
		return nil, err
	}
	in.BusinessID = d.BusinessID
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := ValidateWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	// A deactivated deal stays off until the owner sends another status.
	if in.Status == "" && d.Status == models.DealInactive {
		in.Status = models.DealInactive
	}

	s.apply(d, in, s.now())
	if err := s.Deals.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DefaultDealService) apply(d *models.Deal, in DealInput, now time.Time) {
	d.Title = in.Title
	d.Description = in.Description
	d.Type = in.Type
	d.DiscountValue = in.DiscountValue
	d.StartDate = in.StartDate
	d.EndDate = in.EndDate
	d.Status = StatusAt(in.StartDate, in.EndDate, now, in.Status)
	d.RedemptionInfo = in.RedemptionInfo
	if d.RedemptionInfo == "" {
		d.RedemptionInfo = models.DefaultRedemptionInfo
	}
	d.AppliesTo = in.AppliesTo
	d.MinimumSpend = in.MinimumSpend
	d.UpdatedAt = now
}

func (s *DefaultDealService) Delete(ctx context.Context, ownerID, dealID string) error {
	if _, err := s.owned(ctx, ownerID, dealID); err != nil {
		return err
	}
	return s.Deals.Delete(ctx, dealID)
}

func (s *DefaultDealService) ListMine(ctx context.Context, ownerID string) ([]models.Deal, error) {
	return s.Deals.ListByOwner(ctx, ownerID)
}

func (s *DefaultDealService) ListForBusiness(ctx context.Context, businessID string) ([]models.Deal, error) {
	if _, err := s.Businesses.GetByID(ctx, businessID); err != nil {
		return nil, err
	}
	return s.Deals.ListUpcomingForBusiness(ctx, businessID, s.now())
}

func (s *DefaultDealService) owned(ctx context.Context, ownerID, dealID string) (*models.Deal, error) {
	d, err := s.Deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != ownerID {
		return nil, utils.Forbidden("you can only manage your own deals")
	}
	return d, nil
}
