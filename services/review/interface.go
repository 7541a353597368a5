package review

import (
	"context"

	businessRepo "dinewise/database/repository/business"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"
	"dinewise/services/rating"
	"dinewise/services/storage"

	"go.uber.org/zap"
)

type ReviewService interface {
	Create(ctx context.Context, customerID string, in CreateInput) (*models.Review, error)
	Update(ctx context.Context, customerID, reviewID string, in UpdateInput) (*models.Review, error)
	Delete(ctx context.Context, customerID, reviewID string) error
	// Get and List mark IsUpvoted for viewerID when it is non-empty.
	Get(ctx context.Context, reviewID, viewerID string) (*models.Review, error)
	List(ctx context.Context, criteria reviewRepo.ListCriteria, viewerID string) (*Page, error)
	Respond(ctx context.Context, ownerID, reviewID, text string) (*models.ReviewResponse, error)
	Vote(ctx context.Context, customerID, reviewID string, direction models.VoteDirection) (*models.UpvoteResult, error)
}

// DefaultReviewService is the production implementation.
type DefaultReviewService struct {
	Reviews    reviewRepo.ReviewRepository
	Responses  reviewRepo.ResponseRepository
	Upvotes    reviewRepo.UpvoteRepository
	Businesses businessRepo.BusinessRepository
	Aggregator rating.Aggregator
	// Reconcile may be nil, in which case failed aggregate updates are only logged.
	Reconcile rating.ReconcileEnqueuer
	Images    storage.ImageStore
	// Activity is told when a customer's reviews change. Optional.
	Activity ActivityObserver
	Logger   *zap.Logger
}

// ActivityObserver reacts to a customer's review activity.
type ActivityObserver interface {
	ForgetCustomer(ctx context.Context, customerID string)
}

// CreateInput is a new review. ImagePaths are local files to upload.
type CreateInput struct {
	BusinessID     string   `json:"businessId" validate:"required"`
	Title          string   `json:"title" validate:"required"`
	Text           string   `json:"text" validate:"required"`
	FoodRating     int      `json:"foodRating" validate:"required,min=1,max=5"`
	ServiceRating  int      `json:"serviceRating" validate:"required,min=1,max=5"`
	AmbienceRating int      `json:"ambienceRating" validate:"required,min=1,max=5"`
	ImagePaths     []string `json:"-"`
}

// UpdateInput is a partial edit; zero values keep the current field.
type UpdateInput struct {
	Title          string   `json:"title"`
	Text           string   `json:"text"`
	FoodRating     int      `json:"foodRating" validate:"omitempty,min=1,max=5"`
	ServiceRating  int      `json:"serviceRating" validate:"omitempty,min=1,max=5"`
	AmbienceRating int      `json:"ambienceRating" validate:"omitempty,min=1,max=5"`
	ImagePaths     []string `json:"-"`
}

// Page is one page of a review listing.
type Page struct {
	Reviews []models.Review `json:"reviews"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}
