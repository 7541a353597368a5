package rating

import (
	"context"

	accountRepo "dinewise/database/repository/account"
	businessRepo "dinewise/database/repository/business"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"

	"go.uber.org/zap"
)

// Aggregator keeps the denormalized business, customer and histogram
// statistics in step with the review set. Each method must only be called
// after the triggering review write has succeeded.
type Aggregator interface {
	OnReviewCreated(ctx context.Context, review models.Review) (*models.Business, error)
	OnReviewDeleted(ctx context.Context, review models.Review) (*models.Business, error)
	OnReviewUpdated(ctx context.Context, oldReview, newReview models.Review) (*models.Business, error)
	OnUpvoteToggled(ctx context.Context, reviewID, customerID string, direction models.VoteDirection) (*models.UpvoteResult, error)
}

// DefaultAggregator is the production implementation.
type DefaultAggregator struct {
	Businesses businessRepo.BusinessRepository
	Stats      businessRepo.StatsRepository
	Customers  accountRepo.CustomerRepository
	Reviews    reviewRepo.ReviewRepository
	Upvotes    reviewRepo.UpvoteRepository
	Logger     *zap.Logger
}

// ReconcileEnqueuer schedules an out-of-band full-scan recomputation of a
// business's aggregates and its reviewer's review count. Either id may be empty.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, businessID, customerID string) error
}
