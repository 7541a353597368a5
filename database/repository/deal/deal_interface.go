package dealRepo

import (
	"context"
	"time"

	"dinewise/models"
)

// DealRepository defines methods for deal data access.
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, id string) (*models.Deal, error)
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Deal, error)
	// ListUpcomingForBusiness returns ACTIVE or SCHEDULED deals whose end has
	// not passed, ordered by start date.
	ListUpcomingForBusiness(ctx context.Context, businessID string, now time.Time) ([]models.Deal, error)
	// FindActive returns ACTIVE deals valid at q.Now, newest first.
	FindActive(ctx context.Context, q ActiveQuery) ([]models.Deal, error)

	// ActivateDue moves SCHEDULED deals with start <= now <= end to ACTIVE.
	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	// ExpireDue moves ACTIVE or SCHEDULED deals with end < now to EXPIRED.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	// DeleteByBusiness removes the deals of a deleted business.
	DeleteByBusiness(ctx context.Context, businessID string) error
}

// ActiveQuery selects live deals for the ranker.
type ActiveQuery struct {
	// BusinessIDs restricts to these businesses when non-nil. An empty,
	// non-nil slice matches nothing.
	BusinessIDs []string
	ExcludeIDs  []string
	Now         time.Time
	Limit       int
}
