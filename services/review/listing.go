package review

import (
	"context"

	"dinewise/database/repository"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"

	"golang.org/x/sync/errgroup"
)

// Get returns a review with its owner response.
func (s *DefaultReviewService) Get(ctx context.Context, reviewID, viewerID string) (*models.Review, error) {
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, r, viewerID); err != nil {
		return nil, err
	}
	return r, nil
}

// List returns a page of reviews, each carrying its owner response and the
// viewer's upvote state.
func (s *DefaultReviewService) List(ctx context.Context, criteria reviewRepo.ListCriteria, viewerID string) (*Page, error) {
	reviews, total, err := s.Reviews.List(ctx, criteria)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range reviews {
		r := &reviews[i]
		g.Go(func() error { return s.enrich(gctx, r, viewerID) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page, limit := repository.NormalizePage(criteria.Page, criteria.Limit)
	return &Page{Reviews: reviews, Total: total, Page: page, Limit: limit}, nil
}

func (s *DefaultReviewService) enrich(ctx context.Context, r *models.Review, viewerID string) error {
	response, err := s.Responses.GetByReview(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Response = response

	if viewerID == "" {
		return nil
	}
	upvoted, err := s.Upvotes.Exists(ctx, r.ID, viewerID)
	if err != nil {
		return err
	}
	r.IsUpvoted = upvoted
	return nil
}
