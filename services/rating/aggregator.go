package rating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap"
)

// StarBucket maps a review's mean rating to its histogram bucket by flooring.
// A rating of 0 means "no rating" and has no bucket.
func StarBucket(rating float64) (int, bool) {
	if rating <= 0 {
		return 0, false
	}
	star := int(math.Floor(rating))
	switch {
	case star < models.MinCategoryRating:
		star = models.MinCategoryRating
	case star > models.MaxCategoryRating:
		star = models.MaxCategoryRating
	}
	return star, true
}

// bucketDelta merges per-star changes so an update whose old and new bucket
// coincide nets to nothing.
func bucketDelta(changes ...bucketChange) map[int]int {
	delta := map[int]int{}
	for _, c := range changes {
		if star, ok := StarBucket(c.rating); ok {
			delta[star] += c.n
		}
	}
	for star, n := range delta {
		if n == 0 {
			delete(delta, star)
		}
	}
	return delta
}

type bucketChange struct {
	rating float64
	n      int
}

func negate(d models.RatingDelta) models.RatingDelta {
	return models.RatingDelta{Food: -d.Food, Service: -d.Service, Ambience: -d.Ambience, Count: -d.Count}
}

// apply runs the three independent aggregate writes. Every write is attempted
// even if an earlier one fails; the failures are joined.
func (a *DefaultAggregator) apply(ctx context.Context, businessID, customerID string, delta models.RatingDelta, customerDelta int, buckets map[int]int) (*models.Business, error) {
	var errs []error

	business, err := a.Businesses.ApplyRatingDelta(ctx, businessID, delta)
	if err != nil {
		errs = append(errs, fmt.Errorf("business aggregate: %w", err))
	}
	if customerDelta != 0 {
		if err := a.Customers.IncrementReviewCount(ctx, customerID, customerDelta); err != nil {
			errs = append(errs, fmt.Errorf("customer review count: %w", err))
		}
	}
	if len(buckets) > 0 {
		if err := a.Stats.IncrementBuckets(ctx, businessID, buckets); err != nil {
			errs = append(errs, fmt.Errorf("business stats: %w", err))
		}
	}
	return business, errors.Join(errs...)
}

// OnReviewCreated folds the review into its business's running means,
// bumps the author's review count and the matching histogram bucket.
func (a *DefaultAggregator) OnReviewCreated(ctx context.Context, review models.Review) (*models.Business, error) {
	return a.apply(ctx, review.BusinessID, review.CustomerID,
		review.Contribution(), 1,
		bucketDelta(bucketChange{review.Rating, 1}))
}

// OnReviewDeleted reverses a review's contribution. Removing the last review
// resets the business to all-zero aggregates.
func (a *DefaultAggregator) OnReviewDeleted(ctx context.Context, review models.Review) (*models.Business, error) {
	return a.apply(ctx, review.BusinessID, review.CustomerID,
		negate(review.Contribution()), -1,
		bucketDelta(bucketChange{review.Rating, -1}))
}

// OnReviewUpdated swaps the old contribution for the new one; review_count is unchanged.
func (a *DefaultAggregator) OnReviewUpdated(ctx context.Context, oldReview, newReview models.Review) (*models.Business, error) {
	before, after := oldReview.Contribution(), newReview.Contribution()
	delta := models.RatingDelta{
		Food:     after.Food - before.Food,
		Service:  after.Service - before.Service,
		Ambience: after.Ambience - before.Ambience,
	}
	return a.apply(ctx, newReview.BusinessID, newReview.CustomerID, delta, 0,
		bucketDelta(bucketChange{oldReview.Rating, -1}, bucketChange{newReview.Rating, 1}))
}

// OnUpvoteToggled creates or removes the (review, customer) upvote record and
// moves the counter by exactly one when, and only when, the record changed.
func (a *DefaultAggregator) OnUpvoteToggled(ctx context.Context, reviewID, customerID string, direction models.VoteDirection) (*models.UpvoteResult, error) {
	review, err := a.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var changed bool
	switch direction {
	case models.VoteUp:
		changed, err = a.Upvotes.Insert(ctx, models.ReviewUpvote{ReviewID: reviewID, CustomerID: customerID, CreatedAt: time.Now()})
	case models.VoteDown:
		changed, err = a.Upvotes.Delete(ctx, reviewID, customerID)
	default:
		return nil, utils.Validation("invalid vote action %q", direction)
	}
	if err != nil {
		return nil, err
	}

	result := &models.UpvoteResult{ReviewID: reviewID, Upvotes: review.Upvotes, Changed: changed}
	if !changed {
		return result, nil
	}

	step := 1
	if direction == models.VoteDown {
		step = -1
	}
	upvotes, err := a.Reviews.IncrementUpvotes(ctx, reviewID, step)
	if err != nil {
		a.Logger.Error("upvote recorded but counter not updated",
			zap.String("reviewId", reviewID), zap.String("customerId", customerID), zap.Error(err))
		utils.AggregateUpdateFailures.WithLabelValues("upvote").Inc()
		return nil, err
	}
	result.Upvotes = upvotes
	return result, nil
}
