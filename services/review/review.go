package review

import (
	"context"
	"fmt"
	"time"

	"dinewise/models"
	"dinewise/services/storage"
	"dinewise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageFolder = "reviews"

// Create stores the review and then folds it into the business aggregates.
func (s *DefaultReviewService) Create(ctx context.Context, customerID string, in CreateInput) (*models.Review, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.Businesses.GetByID(ctx, in.BusinessID); err != nil {
		return nil, err
	}

	now := time.Now()
	r := &models.Review{
		ID:             uuid.New().String(),
		BusinessID:     in.BusinessID,
		CustomerID:     customerID,
		Title:          in.Title,
		Text:           in.Text,
		FoodRating:     in.FoodRating,
		ServiceRating:  in.ServiceRating,
		AmbienceRating: in.AmbienceRating,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.DeriveRating()

	images, err := s.uploadImages(ctx, r.ID, 0, in.ImagePaths)
	if err != nil {
		return nil, err
	}
	r.Images = images

	if err := s.Reviews.Create(ctx, r); err != nil {
		s.deleteImages(ctx, images)
		return nil, err
	}

	if _, err := s.Aggregator.OnReviewCreated(ctx, *r); err != nil {
		s.aggregateFailed(ctx, "create", *r, err)
	}
	s.activityChanged(ctx, customerID)
	return r, nil
}

// Update applies a partial edit by the review's author.
func (s *DefaultReviewService) Update(ctx context.Context, customerID, reviewID string, in UpdateInput) (*models.Review, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	current, err := s.authored(ctx, customerID, reviewID)
	if err != nil {
		return nil, err
	}
	old := *current

	if in.Title != "" {
		current.Title = in.Title
	}
	if in.Text != "" {
		current.Text = in.Text
	}
	if in.FoodRating != 0 {
		current.FoodRating = in.FoodRating
	}
	if in.ServiceRating != 0 {
		current.ServiceRating = in.ServiceRating
	}
	if in.AmbienceRating != 0 {
		current.AmbienceRating = in.AmbienceRating
	}
	current.DeriveRating()
	current.UpdatedAt = time.Now()

	added, err := s.uploadImages(ctx, current.ID, len(current.Images), in.ImagePaths)
	if err != nil {
		return nil, err
	}
	current.Images = append(current.Images, added...)

	if err := s.Reviews.Update(ctx, current, old); err != nil {
		s.deleteImages(ctx, added)
		return nil, err
	}

	if old.FoodRating != current.FoodRating || old.ServiceRating != current.ServiceRating || old.AmbienceRating != current.AmbienceRating {
		if _, err := s.Aggregator.OnReviewUpdated(ctx, old, *current); err != nil {
			s.aggregateFailed(ctx, "update", *current, err)
		}
		s.activityChanged(ctx, customerID)
	}
	return current, nil
}

// Delete removes an author's review and reverses its contribution.
func (s *DefaultReviewService) Delete(ctx context.Context, customerID, reviewID string) error {
	r, err := s.authored(ctx, customerID, reviewID)
	if err != nil {
		return err
	}
	if err := s.Reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	if _, err := s.Aggregator.OnReviewDeleted(ctx, *r); err != nil {
		s.aggregateFailed(ctx, "delete", *r, err)
	}
	s.activityChanged(ctx, customerID)

	if err := s.Upvotes.DeleteByReview(ctx, reviewID); err != nil {
		s.Logger.Warn("failed to remove upvotes of deleted review", zap.String("reviewId", reviewID), zap.Error(err))
	}
	if err := s.Responses.DeleteByReview(ctx, reviewID); err != nil {
		s.Logger.Warn("failed to remove response of deleted review", zap.String("reviewId", reviewID), zap.Error(err))
	}
	s.deleteImages(ctx, r.Images)
	return nil
}

// Vote toggles the caller's upvote. Customers cannot upvote their own review.
func (s *DefaultReviewService) Vote(ctx context.Context, customerID, reviewID string, direction models.VoteDirection) (*models.UpvoteResult, error) {
	if direction != models.VoteUp && direction != models.VoteDown {
		return nil, utils.Validation("action must be %q or %q", models.VoteUp, models.VoteDown)
	}
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.CustomerID == customerID && direction == models.VoteUp {
		return nil, utils.Forbidden("you cannot upvote your own review")
	}
	return s.Aggregator.OnUpvoteToggled(ctx, reviewID, customerID, direction)
}

// Respond writes the owner's reply, replacing an earlier one.
func (s *DefaultReviewService) Respond(ctx context.Context, ownerID, reviewID, text string) (*models.ReviewResponse, error) {
	if text == "" {
		return nil, utils.Validation("text is required")
	}
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	business, err := s.Businesses.GetByID(ctx, r.BusinessID)
	if err != nil {
		return nil, err
	}
	if business.OwnerID != ownerID {
		return nil, utils.Forbidden("only the owner of %s can respond to its reviews", business.Name)
	}

	now := time.Now()
	response := &models.ReviewResponse{
		ID:         uuid.New().String(),
		ReviewID:   reviewID,
		BusinessID: business.ID,
		Text:       text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Responses.Upsert(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *DefaultReviewService) activityChanged(ctx context.Context, customerID string) {
	if s.Activity != nil {
		s.Activity.ForgetCustomer(ctx, customerID)
	}
}

func (s *DefaultReviewService) authored(ctx context.Context, customerID, reviewID string) (*models.Review, error) {
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.CustomerID != customerID {
		return nil, utils.Forbidden("you can only modify your own reviews")
	}
	return r, nil
}

// aggregateFailed records a post-write aggregate failure. The review write is
// kept; the business is queued for a full-scan reconciliation.
func (s *DefaultReviewService) aggregateFailed(ctx context.Context, op string, r models.Review, err error) {
	s.Logger.Error("review saved but aggregate update failed",
		zap.String("op", op),
		zap.String("reviewId", r.ID),
		zap.String("businessId", r.BusinessID),
		zap.String("customerId", r.CustomerID),
		zap.Error(err))
	utils.AggregateUpdateFailures.WithLabelValues(op).Inc()

	if s.Reconcile == nil {
		return
	}
	if err := s.Reconcile.EnqueueReconcile(ctx, r.BusinessID, r.CustomerID); err != nil {
		s.Logger.Error("failed to enqueue aggregate reconciliation",
			zap.String("businessId", r.BusinessID), zap.Error(err))
	}
}

// uploadImages stores files as reviews/<reviewId>-<n>, numbering from offset.
func (s *DefaultReviewService) uploadImages(ctx context.Context, reviewID string, offset int, paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for i, p := range paths {
		url, err := s.Images.Upload(ctx, p, imageFolder, fmt.Sprintf("%s-%d", reviewID, offset+i))
		if err != nil {
			s.deleteImages(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// deleteImages is best effort; failures are logged.
func (s *DefaultReviewService) deleteImages(ctx context.Context, urls []string) {
	for _, u := range urls {
		id := storage.PublicIDFromURL(u)
		if id == "" {
			continue
		}
		if err := s.Images.Delete(ctx, id); err != nil {
			s.Logger.Warn("failed to delete review image", zap.String("publicId", id), zap.Error(err))
		}
	}
}
