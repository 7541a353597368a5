package accountRepo

import (
	"context"

	"dinewise/models"
)

// CustomerRepository defines methods for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	// UpdateProfile writes name, bio and profile image.
	UpdateProfile(ctx context.Context, customer *models.Customer) error
	UpdatePreferences(ctx context.Context, id string, cuisines []string, suburb string) (*models.Customer, error)
	// IncrementReviewCount adds delta, never taking the count below zero.
	IncrementReviewCount(ctx context.Context, id string, delta int) error
	// SetReviewCount overwrites the counter with a recount.
	SetReviewCount(ctx context.Context, id string, count int) error
	Delete(ctx context.Context, id string) error
}

// OwnerRepository defines methods for owner data access.
type OwnerRepository interface {
	Create(ctx context.Context, owner *models.Owner) error
	GetByID(ctx context.Context, id string) (*models.Owner, error)
	GetByEmail(ctx context.Context, email string) (*models.Owner, error)
}
