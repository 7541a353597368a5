package deal

import (
	"context"
	"time"

	businessRepo "dinewise/database/repository/business"
	dealRepo "dinewise/database/repository/deal"
	"dinewise/models"

	"go.uber.org/zap"
)

type DealService interface {
	Create(ctx context.Context, ownerID string, in DealInput) (*models.Deal, error)
	Update(ctx context.Context, ownerID, dealID string, in DealInput) (*models.Deal, error)
	Delete(ctx context.Context, ownerID, dealID string) error
	ListMine(ctx context.Context, ownerID string) ([]models.Deal, error)
	// ListForBusiness returns the public ACTIVE/SCHEDULED deals of a business.
	ListForBusiness(ctx context.Context, businessID string) ([]models.Deal, error)
}

// DefaultDealService is the production implementation.
type DefaultDealService struct {
	Deals      dealRepo.DealRepository
	Businesses businessRepo.BusinessRepository
	Logger     *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// DealInput is the owner-editable part of a deal.
type DealInput struct {
	BusinessID     string            `json:"businessId" validate:"required"`
	Title          string            `json:"title" validate:"required,max=120"`
	Description    string            `json:"description"`
	Type           models.DealType   `json:"type" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT BOGO FREE_ITEM SET_MENU"`
	DiscountValue  *float64          `json:"discountValue" validate:"omitempty,gte=0"`
	StartDate      time.Time         `json:"startDate" validate:"required"`
	EndDate        time.Time         `json:"endDate" validate:"required"`
	Status         models.DealStatus `json:"status" validate:"omitempty,oneof=SCHEDULED ACTIVE EXPIRED INACTIVE"`
	RedemptionInfo string            `json:"redemptionInfo"`
	AppliesTo      string            `json:"appliesTo"`
	MinimumSpend   float64           `json:"minimumSpend" validate:"gte=0"`
}
