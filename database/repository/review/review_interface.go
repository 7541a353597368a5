package reviewRepo

import (
	"context"

	"dinewise/models"
)

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	// Create inserts a review. A second review by the same customer for the
	// same business is a conflict.
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	// Update writes the editable fields. It only applies while the stored
	// category ratings still equal prev's; otherwise it is a conflict, so two
	// edits racing from the same snapshot cannot both shift the aggregates.
	Update(ctx context.Context, review *models.Review, prev models.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria ListCriteria) ([]models.Review, int64, error)
	// FindByCustomerMinRating returns the customer's reviews with rating >= minRating.
	FindByCustomerMinRating(ctx context.Context, customerID string, minRating float64) ([]models.Review, error)
	CountByCustomer(ctx context.Context, customerID string) (int, error)
	// ForEachByBusiness streams every review of a business to fn.
	ForEachByBusiness(ctx context.Context, businessID string, fn func(models.Review) error) error
	// IncrementUpvotes adds delta to the counter, never taking it below zero,
	// and returns the new value.
	IncrementUpvotes(ctx context.Context, id string, delta int) (int, error)
}

// UpvoteRepository stores the (review, customer) upvote join records.
type UpvoteRepository interface {
	// Insert creates the record and reports whether it was new.
	Insert(ctx context.Context, upvote models.ReviewUpvote) (bool, error)
	// Delete removes the record and reports whether one existed.
	Delete(ctx context.Context, reviewID, customerID string) (bool, error)
	Exists(ctx context.Context, reviewID, customerID string) (bool, error)
	// DeleteByReview removes every upvote of a deleted review.
	DeleteByReview(ctx context.Context, reviewID string) error
}

// ResponseRepository stores owner replies, one per review.
type ResponseRepository interface {
	Upsert(ctx context.Context, response *models.ReviewResponse) error
	// GetByReview returns nil, nil when the review has no response.
	GetByReview(ctx context.Context, reviewID string) (*models.ReviewResponse, error)
	DeleteByReview(ctx context.Context, reviewID string) error
}

// ListCriteria filters and pages a review listing.
type ListCriteria struct {
	BusinessID string
	CustomerID string
	MinRating  float64
	MaxRating  float64 // 0 means no upper bound.
	SortBy     string  // createdAt (default), rating or upvotes.
	Ascending  bool
	Page       int
	Limit      int
}
