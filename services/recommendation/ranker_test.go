package recommendation

import (
	"context"
	"strings"
	"testing"
	"time"

	"dinewise/database/repository/memory"
	"dinewise/models"

	"go.uber.org/zap/zaptest"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	store  *memory.Store
	ranker *Ranker
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	return &fixture{
		t:     t,
		store: store,
		ranker: &Ranker{
			Businesses: store.Businesses(),
			Reviews:    store.Reviews(),
			Deals:      store.Deals(),
			Settings:   DefaultSettings(),
			Logger:     zaptest.NewLogger(t),
			Now:        func() time.Time { return now },
		},
	}
}

// business seeds a business whose every category averages rating over n reviews.
func (f *fixture) business(b models.Business, rating float64, n int) {
	f.t.Helper()
	ctx := context.Background()
	b.OwnerID = "owner-" + b.ID
	b.Name = b.ID
	if err := f.store.Businesses().Create(ctx, &b); err != nil {
		f.t.Fatalf("create business %s: %v", b.ID, err)
	}
	if n == 0 {
		return
	}
	total := rating * float64(n)
	delta := models.RatingDelta{Food: total, Service: total, Ambience: total, Count: n}
	if _, err := f.store.Businesses().ApplyRatingDelta(ctx, b.ID, delta); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) deal(id, businessID string, created time.Time) {
	f.t.Helper()
	d := models.Deal{
		ID:         id,
		BusinessID: businessID,
		Title:      id,
		Type:       models.DealPercentage,
		StartDate:  now.Add(-24 * time.Hour),
		EndDate:    now.Add(24 * time.Hour),
		Status:     models.DealActive,
		CreatedAt:  created,
	}
	if err := f.store.Deals().Create(context.Background(), &d); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) review(id, customerID, businessID string, stars int) {
	f.t.Helper()
	r := models.Review{
		ID:             id,
		BusinessID:     businessID,
		CustomerID:     customerID,
		FoodRating:     stars,
		ServiceRating:  stars,
		AmbienceRating: stars,
	}
	r.DeriveRating()
	if err := f.store.Reviews().Create(context.Background(), &r); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) recommend(req Request) *models.Recommendations {
	f.t.Helper()
	recs, err := f.ranker.Recommend(context.Background(), req)
	if err != nil {
		f.t.Fatalf("Recommend: %v", err)
	}
	return recs
}

func businessIDsOf(list []models.Business) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func dealIDsOf(list []models.Deal) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertNoDuplicateBusinesses(t *testing.T, recs *models.Recommendations) {
	t.Helper()
	seen := map[string]string{}
	categories := map[string][]models.Business{
		models.CategoryBasedOnYourActivity: recs.BasedOnYourActivity,
		models.CategoryByYourPreferences:   recs.ByYourPreferences,
		models.CategoryPopularNearYou:      recs.PopularNearYou,
		models.CategoryTrendingOverall:     recs.TrendingOverall,
	}
	for category, list := range categories {
		for _, b := range list {
			if prev, ok := seen[b.ID]; ok {
				t.Fatalf("business %s appears in both %s and %s", b.ID, prev, category)
			}
			seen[b.ID] = category
		}
	}
}

func TestPreferencesWithoutLocation(t *testing.T) {
	f := newFixture(t)
	f.business(models.Business{ID: "thai-1", Cuisines: []string{"Thai"}}, 4.5, 12)
	f.business(models.Business{ID: "thai-2", Cuisines: []string{"Thai"}}, 3, 2)
	f.business(models.Business{ID: "trattoria", Cuisines: []string{"Italian"}}, 5, 20)
	f.business(models.Business{ID: "quiet", Cuisines: []string{"Greek"}}, 5, 1)

	customer := &models.Customer{ID: "c1", PreferredCuisines: []string{"Thai"}}
	recs := f.recommend(Request{Customer: customer})

	if got := businessIDsOf(recs.ByYourPreferences); !equal(got, []string{"thai-1", "thai-2"}) {
		t.Fatalf("byYourPreferences = %v", got)
	}
	if len(recs.PopularNearYou) != 0 {
		t.Fatalf("popularNearYou should be empty without a location, got %v", businessIDsOf(recs.PopularNearYou))
	}
	if got := businessIDsOf(recs.TrendingOverall); !equal(got, []string{"trattoria"}) {
		t.Fatalf("trendingOverall = %v", got)
	}
	assertNoDuplicateBusinesses(t, recs)
}

func TestAnonymousGetsTrending(t *testing.T) {
	f := newFixture(t)
	f.business(models.Business{ID: "busy"}, 4, 10)
	f.business(models.Business{ID: "new"}, 5, 3)

	recs := f.recommend(Request{})

	if got := businessIDsOf(recs.TrendingOverall); !equal(got, []string{"busy"}) {
		t.Fatalf("trendingOverall = %v", got)
	}
	if len(recs.BasedOnYourActivity)+len(recs.ByYourPreferences)+len(recs.PopularNearYou) != 0 {
		t.Fatal("anonymous request without location should only get trending")
	}
	if _, ok := recs.Counts()[models.CategoryByYourPreferences]; ok {
		t.Fatal("empty categories must be omitted")
	}
}

func TestActivityExcludesReviewedBusinesses(t *testing.T) {
	f := newFixture(t)
	f.business(models.Business{ID: "pho-a", Cuisines: []string{"Vietnamese"}, PriceRangeID: "pr-2"}, 4, 5)
	f.business(models.Business{ID: "pho-b", Cuisines: []string{"Vietnamese"}}, 4, 2)
	f.business(models.Business{ID: "burger", Cuisines: []string{"American"}, PriceRangeID: "pr-2"}, 3, 1)
	f.business(models.Business{ID: "steak", Cuisines: []string{"Steakhouse"}, PriceRangeID: "pr-3"}, 5, 4)
	f.business(models.Business{ID: "banh-mi", Cuisines: []string{"Vietnamese"}, Address: "Footscray"}, 4.5, 3)
	f.review("r1", "c1", "pho-a", 5)
	f.review("r2", "c1", "steak", 2)

	f.deal("deal-banh-mi", "banh-mi", now.Add(-time.Hour))

	recs := f.recommend(Request{Customer: &models.Customer{ID: "c1"}})

	got := businessIDsOf(recs.BasedOnYourActivity)
	if !equal(got, []string{"banh-mi", "pho-b", "burger"}) {
		t.Fatalf("basedOnYourActivity = %v", got)
	}
	for _, id := range got {
		if id == "pho-a" {
			t.Fatal("a reviewed business must not be recommended back")
		}
	}
	// banh-mi is already placed, so its deal is not an activity deal; it
	// reaches the customer through the backfill instead.
	if len(recs.DealsBasedOnActivity) != 0 {
		t.Fatalf("dealsBasedOnActivity = %v", dealIDsOf(recs.DealsBasedOnActivity))
	}
	if got := dealIDsOf(recs.DealsForYou); !equal(got, []string{"deal-banh-mi"}) {
		t.Fatalf("dealsForYou = %v", got)
	}
	if recs.DealsForYou[0].Business == nil || recs.DealsForYou[0].Business.ID != "banh-mi" {
		t.Fatal("deal should carry its business")
	}
	assertNoDuplicateBusinesses(t, recs)
}

func TestActivityDealsComeFromUnplacedCuisineMatches(t *testing.T) {
	f := newFixture(t)
	f.ranker.Settings.MaxPerCategory = 1
	f.business(models.Business{ID: "pho-a", Cuisines: []string{"Vietnamese"}}, 4, 5)
	f.business(models.Business{ID: "pho-b", Cuisines: []string{"Vietnamese"}}, 4, 2)
	f.business(models.Business{ID: "pho-c", Cuisines: []string{"Vietnamese"}}, 3, 2)
	f.review("r1", "c1", "pho-a", 5)

	f.deal("deal-c", "pho-c", now.Add(-time.Hour))

	recs := f.recommend(Request{Customer: &models.Customer{ID: "c1"}})

	if got := businessIDsOf(recs.BasedOnYourActivity); !equal(got, []string{"pho-b"}) {
		t.Fatalf("basedOnYourActivity = %v", got)
	}
	if got := dealIDsOf(recs.DealsBasedOnActivity); !equal(got, []string{"deal-c"}) {
		t.Fatalf("dealsBasedOnActivity = %v", got)
	}
	// The activity deal list is full, so there is no backfill.
	if len(recs.DealsForYou) != 0 {
		t.Fatalf("dealsForYou = %v", dealIDsOf(recs.DealsForYou))
	}
}

func TestProximityDealsAndBackfill(t *testing.T) {
	f := newFixture(t)
	cbd := models.NewGeoPoint(-37.8136, 144.9631)
	f.business(models.Business{ID: "laneway", Location: models.NewGeoPoint(-37.8140, 144.9640)}, 4, 3)
	f.business(models.Business{ID: "rooftop", Location: models.NewGeoPoint(-37.8130, 144.9620)}, 4.5, 3)
	f.business(models.Business{ID: "geelong", Location: models.NewGeoPoint(-38.1499, 144.3617)}, 5, 2)

	f.deal("deal-rooftop", "rooftop", now.Add(-2*time.Hour))
	f.deal("deal-geelong", "geelong", now.Add(-time.Hour))

	recs := f.recommend(Request{Location: cbd})

	if got := businessIDsOf(recs.PopularNearYou); !equal(got, []string{"rooftop", "laneway"}) {
		t.Fatalf("popularNearYou = %v", got)
	}
	if got := dealIDsOf(recs.DealsForYou); !equal(got, []string{"deal-rooftop", "deal-geelong"}) {
		t.Fatalf("dealsForYou = %v", got)
	}
}

func TestPreferenceDealsFillDealsForYou(t *testing.T) {
	f := newFixture(t)
	f.business(models.Business{ID: "a", Cuisines: []string{"Thai"}}, 4, 1)
	for i, id := range []string{"d1", "d2", "d3"} {
		f.deal(id, "a", now.Add(-time.Duration(i)*time.Hour))
	}

	recs := f.recommend(Request{Customer: &models.Customer{ID: "c1", PreferredCuisines: []string{"Thai"}}})

	if got := dealIDsOf(recs.DealsForYou); !equal(got, []string{"d1", "d2", "d3"}) {
		t.Fatalf("dealsForYou = %v", got)
	}
}

func TestQuerySuburbOverridesPreferredSuburb(t *testing.T) {
	f := newFixture(t)
	f.business(models.Business{ID: "fitzroy", Address: "12 Brunswick St, Fitzroy"}, 4, 1)
	f.business(models.Business{ID: "carlton", Address: "300 Lygon St, Carlton"}, 3, 1)

	customer := &models.Customer{ID: "c1", PreferredSuburb: "Fitzroy"}

	recs := f.recommend(Request{Customer: customer})
	if got := businessIDsOf(recs.PopularNearYou); !equal(got, []string{"fitzroy"}) {
		t.Fatalf("preferred suburb: popularNearYou = %v", got)
	}

	recs = f.recommend(Request{Customer: customer, Suburb: "carlton"})
	if got := businessIDsOf(recs.PopularNearYou); !equal(got, []string{"carlton"}) {
		t.Fatalf("query suburb: popularNearYou = %v", got)
	}
}

func TestCategoriesAreCapped(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		f.business(models.Business{ID: id}, 4, 10)
	}
	recs := f.recommend(Request{})
	if len(recs.TrendingOverall) != DefaultSettings().MaxPerCategory {
		t.Fatalf("trendingOverall has %d items", len(recs.TrendingOverall))
	}
}

type mapCache struct {
	entries map[string]*models.Recommendations
	sets    int
}

func (m *mapCache) Get(_ context.Context, key string) (*models.Recommendations, bool) {
	recs, ok := m.entries[key]
	return recs, ok
}

func (m *mapCache) Set(_ context.Context, key string, recs *models.Recommendations, _ time.Duration) {
	m.entries[key] = recs
	m.sets++
}

func (m *mapCache) Invalidate(_ context.Context, customerID string) {
	for key := range m.entries {
		if strings.HasPrefix(key, customerKeyPrefix(customerID)) {
			delete(m.entries, key)
		}
	}
}

func TestNewReviewInvalidatesCachedRecommendations(t *testing.T) {
	f := newFixture(t)
	cache := &mapCache{entries: map[string]*models.Recommendations{}}
	f.ranker.Cache = cache
	f.business(models.Business{ID: "loved", Cuisines: []string{"Thai"}}, 4.5, 20)
	f.business(models.Business{ID: "similar", Cuisines: []string{"Thai"}}, 4, 2)
	c1 := &models.Customer{ID: "c1"}

	// Another customer's entry must survive.
	f.recommend(Request{Customer: &models.Customer{ID: "c2"}})

	before := f.recommend(Request{Customer: c1})
	if !equal(businessIDsOf(before.TrendingOverall), []string{"loved"}) {
		t.Fatalf("trending before review = %v", businessIDsOf(before.TrendingOverall))
	}

	f.review("r1", "c1", "loved", 5)
	f.ranker.ForgetCustomer(context.Background(), "c1")
	if len(cache.entries) != 1 {
		t.Fatalf("cache entries after invalidation = %d, want 1", len(cache.entries))
	}

	after := f.recommend(Request{Customer: c1})
	if len(after.TrendingOverall) != 0 {
		t.Errorf("reviewed business still trending: %v", businessIDsOf(after.TrendingOverall))
	}
	if !equal(businessIDsOf(after.BasedOnYourActivity), []string{"similar"}) {
		t.Errorf("activity = %v, want [similar]", businessIDsOf(after.BasedOnYourActivity))
	}
}

func TestRecommendUsesCache(t *testing.T) {
	f := newFixture(t)
	cache := &mapCache{entries: map[string]*models.Recommendations{}}
	f.ranker.Cache = cache
	f.business(models.Business{ID: "busy"}, 4, 10)

	first := f.recommend(Request{})
	f.business(models.Business{ID: "busier"}, 5, 50)
	second := f.recommend(Request{})

	if cache.sets != 1 {
		t.Fatalf("cache written %d times, want 1", cache.sets)
	}
	if first != second {
		t.Fatal("second call should be served from the cache")
	}
}

func TestCacheKeyVariesWithInputs(t *testing.T) {
	base := cacheKey(Request{})
	keys := []string{
		cacheKey(Request{Location: models.NewGeoPoint(-37.8136, 144.9631)}),
		cacheKey(Request{Suburb: "Carlton"}),
		cacheKey(Request{Customer: &models.Customer{ID: "c1"}}),
		cacheKey(Request{Customer: &models.Customer{ID: "c1", PreferredCuisines: []string{"Thai"}}}),
	}
	seen := map[string]bool{base: true}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate cache key %q", k)
		}
		seen[k] = true
	}
	if cacheKey(Request{Location: models.NewGeoPoint(-37.81361, 144.96312)}) != keys[0] {
		t.Fatal("locations within the same 3dp cell should share a key")
	}
}
