package rating

import (
	"context"
	"fmt"

	accountRepo "dinewise/database/repository/account"
	businessRepo "dinewise/database/repository/business"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"

	"go.uber.org/zap"
)

// Reconciler recomputes aggregates from the reviews themselves. It is the
// out-of-band repair for aggregate updates that failed after the review write.
type Reconciler struct {
	Businesses businessRepo.BusinessRepository
	Stats      businessRepo.StatsRepository
	Customers  accountRepo.CustomerRepository
	Reviews    reviewRepo.ReviewRepository
	Logger     *zap.Logger
}

// ReconcileBusiness scans every review of the business and overwrites its
// totals, review count and star histogram.
func (r *Reconciler) ReconcileBusiness(ctx context.Context, businessID string) (*models.Business, error) {
	var (
		totals models.RatingTotals
		count  int
	)
	stats := models.BusinessStats{BusinessID: businessID}

	err := r.Reviews.ForEachByBusiness(ctx, businessID, func(review models.Review) error {
		c := review.Contribution()
		totals.Food += c.Food
		totals.Service += c.Service
		totals.Ambience += c.Ambience
		count += c.Count
		if star, ok := StarBucket(review.Rating); ok {
			stats.Add(star, 1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", businessID, err)
	}

	business, err := r.Businesses.SetRatingAggregate(ctx, businessID, totals, count)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", businessID, err)
	}
	if err := r.Stats.Replace(ctx, stats); err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", businessID, err)
	}

	r.Logger.Info("business aggregates reconciled",
		zap.String("businessId", businessID),
		zap.Int("reviewCount", count),
		zap.Float64("rating", business.Rating))
	return business, nil
}

// ReconcileCustomer recounts the customer's reviews and overwrites review_count.
func (r *Reconciler) ReconcileCustomer(ctx context.Context, customerID string) (int, error) {
	n, err := r.Reviews.CountByCustomer(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("recount customer %s: %w", customerID, err)
	}
	if err := r.Customers.SetReviewCount(ctx, customerID, n); err != nil {
		return 0, fmt.Errorf("recount customer %s: %w", customerID, err)
	}
	r.Logger.Info("customer review count reconciled", zap.String("customerId", customerID), zap.Int("reviewCount", n))
	return n, nil
}
