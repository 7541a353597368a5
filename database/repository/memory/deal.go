package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	dealRepo "dinewise/database/repository/deal"
	"dinewise/models"
	"dinewise/utils"
)

var _ dealRepo.DealRepository = (*DealRepo)(nil)

type DealRepo struct{ s *Store }

func cloneDeal(d models.Deal) models.Deal {
	if d.DiscountValue != nil {
		v := *d.DiscountValue
		d.DiscountValue = &v
	}
	d.Business = nil
	return d
}

func (r *DealRepo) Create(_ context.Context, deal *models.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.deals[deal.ID]; ok {
		return utils.Conflict("deal %s already exists", deal.ID)
	}
	r.s.deals[deal.ID] = cloneDeal(*deal)
	return nil
}

func (r *DealRepo) GetByID(_ context.Context, id string) (*models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	deal, ok := r.s.deals[id]
	if !ok {
		return nil, utils.NotFound("deal %s not found", id)
	}
	deal = cloneDeal(deal)
	return &deal, nil
}

func (r *DealRepo) Update(_ context.Context, deal *models.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.deals[deal.ID]
	if !ok {
		return utils.NotFound("deal %s not found", deal.ID)
	}
	updated := cloneDeal(*deal)
	updated.BusinessID = current.BusinessID
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt
	r.s.deals[deal.ID] = updated
	return nil
}

func (r *DealRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.deals[id]; !ok {
		return utils.NotFound("deal %s not found", id)
	}
	delete(r.s.deals, id)
	return nil
}

func (r *DealRepo) DeleteByBusiness(_ context.Context, businessID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, deal := range r.s.deals {
		if deal.BusinessID == businessID {
			delete(r.s.deals, id)
		}
	}
	return nil
}

func (r *DealRepo) filter(keep func(models.Deal) bool) []models.Deal {
	out := []models.Deal{}
	for _, deal := range r.s.deals {
		if keep(deal) {
			out = append(out, cloneDeal(deal))
		}
	}
	return out
}

// sortNewestFirst orders deals by creation recency, newest first.
func sortNewestFirst(deals []models.Deal) {
	sort.Slice(deals, func(i, j int) bool {
		if !deals[i].CreatedAt.Equal(deals[j].CreatedAt) {
			return deals[i].CreatedAt.After(deals[j].CreatedAt)
		}
		return deals[i].ID < deals[j].ID
	})
}

func (r *DealRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(d models.Deal) bool { return d.OwnerID == ownerID })
	sortNewestFirst(out)
	return out, nil
}

func (r *DealRepo) ListUpcomingForBusiness(_ context.Context, businessID string, now time.Time) ([]models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(d models.Deal) bool {
		return d.BusinessID == businessID &&
			(d.Status == models.DealActive || d.Status == models.DealScheduled) &&
			!d.EndDate.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *DealRepo) FindActive(_ context.Context, q dealRepo.ActiveQuery) ([]models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(d models.Deal) bool {
		if d.Status != models.DealActive || d.StartDate.After(q.Now) || d.EndDate.Before(q.Now) {
			return false
		}
		if q.BusinessIDs != nil && !slices.Contains(q.BusinessIDs, d.BusinessID) {
			return false
		}
		return !slices.Contains(q.ExcludeIDs, d.ID)
	})
	sortNewestFirst(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *DealRepo) ActivateDue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, d := range r.s.deals {
		if d.Status == models.DealScheduled && !d.StartDate.After(now) && !d.EndDate.Before(now) {
			d.Status = models.DealActive
			d.UpdatedAt = now
			r.s.deals[id] = d
			n++
		}
	}
	return n, nil
}

func (r *DealRepo) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, d := range r.s.deals {
		if (d.Status == models.DealActive || d.Status == models.DealScheduled) && d.EndDate.Before(now) {
			d.Status = models.DealExpired
			d.UpdatedAt = now
			r.s.deals[id] = d
			n++
		}
	}
	return n, nil
}
