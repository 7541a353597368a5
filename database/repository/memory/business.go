package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"dinewise/database/repository"
	businessRepo "dinewise/database/repository/business"
	"dinewise/models"
	"dinewise/utils"

	"github.com/google/uuid"
)

var (
	_ businessRepo.BusinessRepository   = (*BusinessRepo)(nil)
	_ businessRepo.StatsRepository      = (*StatsRepo)(nil)
	_ businessRepo.PriceRangeRepository = (*PriceRangeRepo)(nil)
)

type BusinessRepo struct{ s *Store }

func cloneBusiness(b models.Business) models.Business {
	b.Images = slices.Clone(b.Images)
	b.Cuisines = slices.Clone(b.Cuisines)
	if b.Location != nil {
		loc := *b.Location
		loc.Coordinates = slices.Clone(loc.Coordinates)
		b.Location = &loc
	}
	return b
}

func (r *BusinessRepo) Create(_ context.Context, b *models.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.businesses {
		if existing.OwnerID == b.OwnerID && existing.Name == b.Name {
			return utils.Conflict("you already have a business with this name")
		}
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	b.SetRatingAggregate(models.RatingTotals{}, 0)
	if b.Images == nil {
		b.Images = []string{}
	}
	if b.Cuisines == nil {
		b.Cuisines = []string{}
	}
	r.s.businesses[b.ID] = cloneBusiness(*b)
	return nil
}

func (r *BusinessRepo) GetByID(_ context.Context, id string) (*models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.businesses[id]
	if !ok {
		return nil, utils.NotFound("business %s not found", id)
	}
	b = cloneBusiness(b)
	return &b, nil
}

func (r *BusinessRepo) GetByIDs(_ context.Context, ids []string) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Business{}
	for _, id := range ids {
		if b, ok := r.s.businesses[id]; ok {
			out = append(out, cloneBusiness(b))
		}
	}
	return out, nil
}

func (r *BusinessRepo) GetByOwner(_ context.Context, ownerID string) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Business{}
	for _, b := range r.s.businesses {
		if b.OwnerID == ownerID {
			out = append(out, cloneBusiness(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BusinessRepo) ExistsByName(_ context.Context, ownerID, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.businesses {
		if b.OwnerID == ownerID && b.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *BusinessRepo) UpdateProfile(_ context.Context, b *models.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.businesses[b.ID]
	if !ok || current.OwnerID != b.OwnerID {
		return utils.NotFound("business %s not found", b.ID)
	}
	for _, other := range r.s.businesses {
		if other.ID != b.ID && other.OwnerID == b.OwnerID && other.Name == b.Name {
			return utils.Conflict("you already have a business with this name")
		}
	}
	b.UpdatedAt = time.Now()
	updated := cloneBusiness(*b)
	updated.CreatedAt = current.CreatedAt
	updated.SetRatingAggregate(current.RatingTotals, current.ReviewCount)
	r.s.businesses[b.ID] = updated
	return nil
}

func (r *BusinessRepo) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.businesses[id]
	if !ok || b.OwnerID != ownerID {
		return utils.NotFound("business %s not found", id)
	}
	delete(r.s.businesses, id)
	return nil
}

func matchesSearch(b models.Business, c businessRepo.SearchCriteria) bool {
	if c.Query != "" {
		hit := containsFold(b.Name, c.Query)
		for _, cuisine := range b.Cuisines {
			hit = hit || containsFold(cuisine, c.Query)
		}
		if !hit {
			return false
		}
	}
	for _, want := range c.SelectedCuisines {
		if !slices.ContainsFunc(b.Cuisines, func(have string) bool { return strings.EqualFold(have, want) }) {
			return false
		}
	}
	return true
}

func (r *BusinessRepo) Search(_ context.Context, c businessRepo.SearchCriteria) ([]models.Business, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []models.Business{}
	for _, b := range r.s.businesses {
		if matchesSearch(b, c) {
			matched = append(matched, cloneBusiness(b))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch c.SortBy {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "review_count":
			if a.ReviewCount != b.ReviewCount {
				return a.ReviewCount > b.ReviewCount
			}
		case "createdAt":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		default:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return a.ID < b.ID
	})

	pageNum, size := repository.NormalizePage(c.Page, c.PageSize)
	return page(matched, pageNum, size), int64(len(matched)), nil
}

func matchesRank(b models.Business, q businessRepo.RankQuery) bool {
	if len(q.Cuisines) > 0 || len(q.PriceRangeIDs) > 0 {
		hit := anyIn(b.Cuisines, q.Cuisines)
		if b.PriceRangeID != "" && slices.Contains(q.PriceRangeIDs, b.PriceRangeID) {
			hit = true
		}
		if !hit {
			return false
		}
	}
	if q.Near.Valid() && q.RadiusMeters > 0 {
		if !b.Location.Valid() || haversineMeters(q.Near, b.Location) > q.RadiusMeters {
			return false
		}
	} else if q.AddressContains != "" && !containsFold(b.Address, q.AddressContains) {
		return false
	}
	if b.ReviewCount < q.MinReviewCount {
		return false
	}
	return !slices.Contains(q.ExcludeIDs, b.ID)
}

// SortRanked orders businesses by rating desc, review_count desc, id asc.
func SortRanked(businesses []models.Business) {
	sort.Slice(businesses, func(i, j int) bool {
		a, b := businesses[i], businesses[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.ID < b.ID
	})
}

func (r *BusinessRepo) FindRanked(_ context.Context, q businessRepo.RankQuery) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Business{}
	for _, b := range r.s.businesses {
		if matchesRank(b, q) {
			out = append(out, cloneBusiness(b))
		}
	}
	SortRanked(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *BusinessRepo) CuisineSummary(_ context.Context) ([]models.CuisineCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[string]int{}
	for _, b := range r.s.businesses {
		for _, c := range b.Cuisines {
			counts[c]++
		}
	}
	out := make([]models.CuisineCount, 0, len(counts))
	for cuisine, n := range counts {
		out = append(out, models.CuisineCount{Cuisine: cuisine, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cuisine < out[j].Cuisine })
	return out, nil
}

func (r *BusinessRepo) ApplyRatingDelta(_ context.Context, id string, delta models.RatingDelta) (*models.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.businesses[id]
	if !ok {
		return nil, utils.NotFound("business %s not found", id)
	}
	b.ApplyRatingDelta(delta)
	b.UpdatedAt = time.Now()
	r.s.businesses[id] = b
	b = cloneBusiness(b)
	return &b, nil
}

func (r *BusinessRepo) SetRatingAggregate(_ context.Context, id string, totals models.RatingTotals, count int) (*models.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.businesses[id]
	if !ok {
		return nil, utils.NotFound("business %s not found", id)
	}
	b.SetRatingAggregate(totals, count)
	b.UpdatedAt = time.Now()
	r.s.businesses[id] = b
	b = cloneBusiness(b)
	return &b, nil
}

type StatsRepo struct{ s *Store }

func (r *StatsRepo) IncrementBuckets(_ context.Context, businessID string, delta map[int]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats, ok := r.s.stats[businessID]
	if !ok {
		stats = models.BusinessStats{BusinessID: businessID}
	}
	for star, n := range delta {
		stats.Add(star, n)
	}
	r.s.stats[businessID] = stats
	return nil
}

func (r *StatsRepo) Get(_ context.Context, businessID string) (*models.BusinessStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats, ok := r.s.stats[businessID]
	if !ok {
		stats = models.BusinessStats{BusinessID: businessID}
	}
	return &stats, nil
}

func (r *StatsRepo) Replace(_ context.Context, stats models.BusinessStats) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stats[stats.BusinessID] = stats
	return nil
}

func (r *StatsRepo) Delete(_ context.Context, businessID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.stats, businessID)
	return nil
}

type PriceRangeRepo struct{ s *Store }

func (r *PriceRangeRepo) List(_ context.Context) ([]models.PriceRange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.PriceRange, 0, len(r.s.priceRanges))
	for _, pr := range r.s.priceRanges {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LowerBound < out[j].LowerBound })
	return out, nil
}

func (r *PriceRangeRepo) Create(_ context.Context, pr *models.PriceRange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.priceRanges {
		if existing.LowerBound == pr.LowerBound && existing.UpperBound == pr.UpperBound {
			return utils.Conflict("price range %.2f-%.2f already exists", pr.LowerBound, pr.UpperBound)
		}
	}
	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	r.s.priceRanges[pr.ID] = *pr
	return nil
}
