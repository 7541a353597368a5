package recommendation

import (
	"context"
	"slices"
	"time"

	businessRepo "dinewise/database/repository/business"
	dealRepo "dinewise/database/repository/deal"
	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap"
)

// run holds the state of one Recommend call.
type run struct {
	r        *Ranker
	req      Request
	now      time.Time
	out      models.Recommendations
	excluded map[string]bool // business ids already placed or reviewed
	dealIDs  map[string]bool // deal ids already placed
}

// Recommend returns the categorized recommendations for req. Categories are
// filled in precedence order and a business appears in at most one of them.
func (r *Ranker) Recommend(ctx context.Context, req Request) (*models.Recommendations, error) {
	key := cacheKey(req)
	if r.Cache != nil {
		if cached, ok := r.Cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	st := &run{r: r, req: req, now: now, excluded: map[string]bool{}, dealIDs: map[string]bool{}}

	steps := []func(context.Context) error{
		st.activity,
		st.preferences,
		st.proximity,
		st.trending,
		st.dealBackfill,
		st.attachDealBusinesses,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}

	for category, n := range st.out.Counts() {
		utils.RecommendationsServed.WithLabelValues(category).Add(float64(n))
	}
	if r.Cache != nil {
		r.Cache.Set(ctx, key, &st.out, r.Settings.CacheTTL)
	}
	return &st.out, nil
}

// ForgetCustomer drops the customer's cached recommendations. It runs after
// any change to their reviews, which feed the activity layer and exclusions.
func (r *Ranker) ForgetCustomer(ctx context.Context, customerID string) {
	if r.Cache != nil && customerID != "" {
		r.Cache.Invalidate(ctx, customerID)
	}
}

func (st *run) limit() int { return st.r.Settings.MaxPerCategory }

func (st *run) suburb() string {
	if st.req.Suburb != "" {
		return st.req.Suburb
	}
	if st.req.Customer != nil {
		return st.req.Customer.PreferredSuburb
	}
	return ""
}

func (st *run) hasLocation() bool {
	return st.req.Location.Valid() || st.suburb() != ""
}

// located adds the location restriction, if any, to q.
func (st *run) located(q businessRepo.RankQuery) businessRepo.RankQuery {
	if st.req.Location.Valid() {
		q.Near = st.req.Location
		q.RadiusMeters = st.r.Settings.RadiusMeters
	} else {
		q.AddressContains = st.suburb()
	}
	return q
}

func (st *run) exclusions() []string {
	ids := make([]string, 0, len(st.excluded))
	for id := range st.excluded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// rank runs one business layer and marks the results as placed.
func (st *run) rank(ctx context.Context, q businessRepo.RankQuery) ([]models.Business, error) {
	q.ExcludeIDs = st.exclusions()
	q.Limit = st.limit()
	found, err := st.r.Businesses.FindRanked(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, b := range found {
		st.excluded[b.ID] = true
	}
	return found, nil
}

// deals fetches up to n live deals of businessIDs (nil means any business)
// that have not been placed yet, and marks them placed.
func (st *run) deals(ctx context.Context, businessIDs []string, n int) ([]models.Deal, error) {
	if n <= 0 {
		return nil, nil
	}
	exclude := make([]string, 0, len(st.dealIDs))
	for id := range st.dealIDs {
		exclude = append(exclude, id)
	}
	slices.Sort(exclude)

	found, err := st.r.Deals.FindActive(ctx, dealRepo.ActiveQuery{
		BusinessIDs: businessIDs,
		ExcludeIDs:  exclude,
		Now:         st.now,
		Limit:       n,
	})
	if err != nil {
		return nil, err
	}
	for _, d := range found {
		st.dealIDs[d.ID] = true
	}
	return found, nil
}

func businessIDs(businesses []models.Business) []string {
	ids := make([]string, len(businesses))
	for i, b := range businesses {
		ids[i] = b.ID
	}
	return ids
}

// activity recommends businesses resembling those the customer rated highly.
// The reviewed businesses themselves are never recommended back.
func (st *run) activity(ctx context.Context) error {
	c := st.req.Customer
	if c == nil {
		return nil
	}
	liked, err := st.r.Reviews.FindByCustomerMinRating(ctx, c.ID, st.r.Settings.HighRating)
	if err != nil || len(liked) == 0 {
		return err
	}

	reviewed := make([]string, 0, len(liked))
	for _, rv := range liked {
		if !st.excluded[rv.BusinessID] {
			st.excluded[rv.BusinessID] = true
			reviewed = append(reviewed, rv.BusinessID)
		}
	}
	likedBusinesses, err := st.r.Businesses.GetByIDs(ctx, reviewed)
	if err != nil {
		return err
	}

	var cuisines, priceRanges []string
	for _, b := range likedBusinesses {
		for _, cuisine := range b.Cuisines {
			if !slices.Contains(cuisines, cuisine) {
				cuisines = append(cuisines, cuisine)
			}
		}
		if b.PriceRangeID != "" && !slices.Contains(priceRanges, b.PriceRangeID) {
			priceRanges = append(priceRanges, b.PriceRangeID)
		}
	}
	if len(cuisines) == 0 && len(priceRanges) == 0 {
		return nil
	}

	q := businessRepo.RankQuery{Cuisines: cuisines, PriceRangeIDs: priceRanges}
	if st.hasLocation() {
		q = st.located(q)
	}
	st.out.BasedOnYourActivity, err = st.rank(ctx, q)
	if err != nil || len(cuisines) == 0 {
		return err
	}

	// Deals from any other business serving a liked cuisine.
	candidates, err := st.r.Businesses.FindRanked(ctx, businessRepo.RankQuery{
		Cuisines:   cuisines,
		ExcludeIDs: st.exclusions(),
	})
	if err != nil {
		return err
	}
	st.out.DealsBasedOnActivity, err = st.deals(ctx, businessIDs(candidates), st.limit())
	return err
}

// preferences recommends businesses serving the customer's preferred cuisines.
func (st *run) preferences(ctx context.Context) error {
	c := st.req.Customer
	if c == nil || len(c.PreferredCuisines) == 0 {
		return nil
	}
	q := businessRepo.RankQuery{Cuisines: c.PreferredCuisines}
	if st.hasLocation() {
		q = st.located(q)
	}
	found, err := st.rank(ctx, q)
	if err != nil || len(found) == 0 {
		return err
	}
	st.out.ByYourPreferences = found

	deals, err := st.deals(ctx, businessIDs(found), st.limit()-len(st.out.DealsForYou))
	st.out.DealsForYou = append(st.out.DealsForYou, deals...)
	return err
}

// proximity recommends the best businesses around the caller.
func (st *run) proximity(ctx context.Context) error {
	if !st.hasLocation() {
		return nil
	}
	found, err := st.rank(ctx, st.located(businessRepo.RankQuery{}))
	if err != nil || len(found) == 0 {
		return err
	}
	st.out.PopularNearYou = found

	deals, err := st.deals(ctx, businessIDs(found), st.limit()-len(st.out.DealsForYou))
	st.out.DealsForYou = append(st.out.DealsForYou, deals...)
	return err
}

// trending is the signal-free fallback: well-reviewed businesses overall.
func (st *run) trending(ctx context.Context) error {
	found, err := st.rank(ctx, businessRepo.RankQuery{MinReviewCount: st.r.Settings.TrendingMinReviews})
	st.out.TrendingOverall = found
	return err
}

// dealBackfill tops up dealsForYou with any live deal not shown yet.
func (st *run) dealBackfill(ctx context.Context) error {
	if len(st.out.DealsForYou) >= st.limit() || len(st.out.DealsBasedOnActivity) >= st.limit() {
		return nil
	}
	deals, err := st.deals(ctx, nil, st.limit()-len(st.out.DealsForYou))
	st.out.DealsForYou = append(st.out.DealsForYou, deals...)
	return err
}

// attachDealBusinesses embeds each deal's business for display.
func (st *run) attachDealBusinesses(ctx context.Context) error {
	var ids []string
	for _, list := range [][]models.Deal{st.out.DealsBasedOnActivity, st.out.DealsForYou} {
		for _, d := range list {
			if !slices.Contains(ids, d.BusinessID) {
				ids = append(ids, d.BusinessID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	businesses, err := st.r.Businesses.GetByIDs(ctx, ids)
	if err != nil {
		// Deals are still useful without their business card.
		st.r.Logger.Warn("failed to load deal businesses", zap.Error(err))
		return nil
	}
	byID := make(map[string]*models.Business, len(businesses))
	for i := range businesses {
		byID[businesses[i].ID] = &businesses[i]
	}
	for _, list := range [][]models.Deal{st.out.DealsBasedOnActivity, st.out.DealsForYou} {
		for i := range list {
			list[i].Business = byID[list[i].BusinessID]
		}
	}
	return nil
}
