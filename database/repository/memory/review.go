package memory

import (
	"context"
	"slices"
	"sort"

	"dinewise/database/repository"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"
	"dinewise/utils"
)

var (
	_ reviewRepo.ReviewRepository   = (*ReviewRepo)(nil)
	_ reviewRepo.UpvoteRepository   = (*UpvoteRepo)(nil)
	_ reviewRepo.ResponseRepository = (*ResponseRepo)(nil)
)

type ReviewRepo struct{ s *Store }

func cloneReview(r models.Review) models.Review {
	r.Images = slices.Clone(r.Images)
	r.Response = nil
	r.IsUpvoted = false
	return r
}

func (r *ReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.reviews {
		if existing.CustomerID == review.CustomerID && existing.BusinessID == review.BusinessID {
			return utils.Conflict("you have already reviewed this business")
		}
	}
	if review.Images == nil {
		review.Images = []string{}
	}
	r.s.reviews[review.ID] = cloneReview(*review)
	return nil
}

func (r *ReviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	review, ok := r.s.reviews[id]
	if !ok {
		return nil, utils.NotFound("review %s not found", id)
	}
	review = cloneReview(review)
	return &review, nil
}

func (r *ReviewRepo) Update(_ context.Context, review *models.Review, prev models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.reviews[review.ID]
	if !ok {
		return utils.NotFound("review %s not found", review.ID)
	}
	if current.FoodRating != prev.FoodRating || current.ServiceRating != prev.ServiceRating || current.AmbienceRating != prev.AmbienceRating {
		return utils.Conflict("review %s was changed by another request; reload and retry", review.ID)
	}
	current.Title = review.Title
	current.Text = review.Text
	current.FoodRating = review.FoodRating
	current.ServiceRating = review.ServiceRating
	current.AmbienceRating = review.AmbienceRating
	current.Rating = review.Rating
	current.Images = slices.Clone(review.Images)
	current.UpdatedAt = review.UpdatedAt
	r.s.reviews[review.ID] = current
	return nil
}

func (r *ReviewRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return utils.NotFound("review %s not found", id)
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepo) List(_ context.Context, c reviewRepo.ListCriteria) ([]models.Review, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []models.Review{}
	for _, review := range r.s.reviews {
		switch {
		case c.BusinessID != "" && review.BusinessID != c.BusinessID:
		case c.CustomerID != "" && review.CustomerID != c.CustomerID:
		case c.MinRating > 0 && review.Rating < c.MinRating:
		case c.MaxRating > 0 && review.Rating > c.MaxRating:
		default:
			matched = append(matched, cloneReview(review))
		}
	}

	field := reviewRepo.SortField(c.SortBy)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less, equal bool
		switch field {
		case "rating":
			less, equal = a.Rating < b.Rating, a.Rating == b.Rating
		case "upvotes":
			less, equal = a.Upvotes < b.Upvotes, a.Upvotes == b.Upvotes
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			return a.ID < b.ID
		}
		if c.Ascending {
			return less
		}
		return !less
	})

	pageNum, size := repository.NormalizePage(c.Page, c.Limit)
	return page(matched, pageNum, size), int64(len(matched)), nil
}

func (r *ReviewRepo) CountByCustomer(_ context.Context, customerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, review := range r.s.reviews {
		if review.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *ReviewRepo) FindByCustomerMinRating(_ context.Context, customerID string, minRating float64) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Review{}
	for _, review := range r.s.reviews {
		if review.CustomerID == customerID && review.Rating >= minRating {
			out = append(out, cloneReview(review))
		}
	}
	return out, nil
}

// ForEachByBusiness snapshots the matching reviews before calling fn so that
// fn may use the store.
func (r *ReviewRepo) ForEachByBusiness(ctx context.Context, businessID string, fn func(models.Review) error) error {
	r.s.mu.RLock()
	var snapshot []models.Review
	for _, review := range r.s.reviews {
		if review.BusinessID == businessID {
			snapshot = append(snapshot, cloneReview(review))
		}
	}
	r.s.mu.RUnlock()

	for _, review := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(review); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReviewRepo) IncrementUpvotes(_ context.Context, id string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	review, ok := r.s.reviews[id]
	if !ok {
		return 0, utils.NotFound("review %s not found", id)
	}
	if review.Upvotes+delta >= 0 {
		review.Upvotes += delta
		r.s.reviews[id] = review
	}
	return review.Upvotes, nil
}

type UpvoteRepo struct{ s *Store }

func (r *UpvoteRepo) Insert(_ context.Context, upvote models.ReviewUpvote) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := upvoteKey{upvote.ReviewID, upvote.CustomerID}
	if _, ok := r.s.upvotes[key]; ok {
		return false, nil
	}
	r.s.upvotes[key] = upvote
	return true, nil
}

func (r *UpvoteRepo) Delete(_ context.Context, reviewID, customerID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := upvoteKey{reviewID, customerID}
	if _, ok := r.s.upvotes[key]; !ok {
		return false, nil
	}
	delete(r.s.upvotes, key)
	return true, nil
}

func (r *UpvoteRepo) Exists(_ context.Context, reviewID, customerID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.upvotes[upvoteKey{reviewID, customerID}]
	return ok, nil
}

func (r *UpvoteRepo) DeleteByReview(_ context.Context, reviewID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key := range r.s.upvotes {
		if key.reviewID == reviewID {
			delete(r.s.upvotes, key)
		}
	}
	return nil
}

type ResponseRepo struct{ s *Store }

func (r *ResponseRepo) Upsert(_ context.Context, response *models.ReviewResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.responses[response.ReviewID]; ok {
		existing.Text = response.Text
		existing.UpdatedAt = response.UpdatedAt
		*response = existing
	}
	r.s.responses[response.ReviewID] = *response
	return nil
}

func (r *ResponseRepo) GetByReview(_ context.Context, reviewID string) (*models.ReviewResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	response, ok := r.s.responses[reviewID]
	if !ok {
		return nil, nil
	}
	return &response, nil
}

func (r *ResponseRepo) DeleteByReview(_ context.Context, reviewID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.responses, reviewID)
	return nil
}
