package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dinewise/database/repository/memory"
	"dinewise/handlers"
	"dinewise/models"
	"dinewise/routes"
	"dinewise/services/auth"
	"dinewise/services/business"
	"dinewise/services/customer"
	"dinewise/services/deal"
	"dinewise/services/rating"
	"dinewise/services/recommendation"
	"dinewise/services/review"
	"dinewise/services/storage"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()

	aggregator := &rating.DefaultAggregator{
		Businesses: store.Businesses(),
		Stats:      store.Stats(),
		Customers:  store.Customers(),
		Reviews:    store.Reviews(),
		Upvotes:    store.Upvotes(),
		Logger:     logger,
	}
	health := utils.NewHealthMonitor(nil, nil, time.Minute)
	health.Check(context.Background())

	svc := handlers.Services{
		Auth: &auth.DefaultAuthService{
			Customers: store.Customers(),
			Owners:    store.Owners(),
			Tokens:    utils.NewTokenIssuer("handler-secret", time.Hour),
			Logger:    logger,
		},
		Customers: &customer.DefaultCustomerService{Customers: store.Customers(), Logger: logger},
		Businesses: &business.DefaultBusinessService{
			Businesses:  store.Businesses(),
			Stats:       store.Stats(),
			PriceRanges: store.PriceRanges(),
			Deals:       store.Deals(),
			Images:      storage.DisabledStore{},
			Logger:      logger,
		},
		Reviews: &review.DefaultReviewService{
			Reviews:    store.Reviews(),
			Responses:  store.Responses(),
			Upvotes:    store.Upvotes(),
			Businesses: store.Businesses(),
			Aggregator: aggregator,
			Images:     storage.DisabledStore{},
			Logger:     logger,
		},
		Deals: &deal.DefaultDealService{Deals: store.Deals(), Businesses: store.Businesses(), Logger: logger},
		Recommendations: &recommendation.Ranker{
			Businesses: store.Businesses(),
			Reviews:    store.Reviews(),
			Deals:      store.Deals(),
			Settings:   recommendation.DefaultSettings(),
			Logger:     logger,
		},
		Health: health,
	}

	r := gin.New()
	routes.RegisterRoutes(r, handlers.NewHandlerBundle(svc, logger))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func register(t *testing.T, r *gin.Engine, role, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"role": role, "email": email, "password": "s3cretpass", "firstName": "Sam", "lastName": "Lee",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", role, w.Code, w.Body.String())
	}
	return decode[models.AuthToken](t, w).Token
}

func TestRoleGuards(t *testing.T) {
	r := newRouter(t)
	customerToken := register(t, r, "customer", "cust@example.com")
	ownerToken := register(t, r, "owner", "owner@example.com")

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"anonymous customer route", "/api/customers/me", "", http.StatusUnauthorized},
		{"owner on customer route", "/api/customers/me", ownerToken, http.StatusForbidden},
		{"customer on customer route", "/api/customers/me", customerToken, http.StatusOK},
		{"customer on owner route", "/api/owner/businesses", customerToken, http.StatusForbidden},
		{"owner on owner route", "/api/owner/businesses", ownerToken, http.StatusOK},
		{"garbage token", "/api/owner/businesses", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, r, http.MethodGet, tt.path, tt.token, nil); w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestReviewFlowUpdatesAggregateAndRecommendations(t *testing.T) {
	r := newRouter(t)
	customerToken := register(t, r, "customer", "cust@example.com")
	ownerToken := register(t, r, "owner", "owner@example.com")

	lat, lng := -37.8136, 144.9631
	w := do(t, r, http.MethodPost, "/api/owner/businesses", ownerToken, map[string]any{
		"name": "Thai Palace", "address": "1 Swanston St, Melbourne",
		"cuisines": []string{"Thai"}, "latitude": lat, "longitude": lng,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create business: status %d: %s", w.Code, w.Body.String())
	}
	biz := decode[models.Business](t, w)

	w = do(t, r, http.MethodPost, "/api/reviews", customerToken, map[string]any{
		"businessId": biz.ID, "title": "Great", "text": "Loved the curry",
		"foodRating": 5, "serviceRating": 4, "ambienceRating": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create review: status %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/businesses/"+biz.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get business: status %d", w.Code)
	}
	detail := decode[models.BusinessDetail](t, w)
	if detail.ReviewCount != 1 || detail.Rating != 4 {
		t.Errorf("aggregate = %d reviews, rating %v; want 1 and 4", detail.ReviewCount, detail.Rating)
	}

	near := "/api/recommendations?lat=-37.8136&lng=144.9631"
	w = do(t, r, http.MethodGet, near, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous recommendations: status %d: %s", w.Code, w.Body.String())
	}
	anon := decode[models.Recommendations](t, w)
	if len(anon.PopularNearYou) != 1 || anon.PopularNearYou[0].ID != biz.ID {
		t.Errorf("popularNearYou = %+v, want %s", anon.PopularNearYou, biz.ID)
	}

	// The customer rated it 4, so it is never recommended back to them.
	w = do(t, r, http.MethodGet, near, customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("customer recommendations: status %d", w.Code)
	}
	mine := decode[models.Recommendations](t, w)
	if len(mine.PopularNearYou) != 0 || len(mine.BasedOnYourActivity) != 0 {
		t.Errorf("reviewed business recommended: %+v", mine)
	}
}

func TestRecommendationsRejectHalfLocation(t *testing.T) {
	r := newRouter(t)
	if w := do(t, r, http.MethodGet, "/api/recommendations?lat=-37.8", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	r := newRouter(t)
	if w := do(t, r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", w.Code)
	}
}

func TestMultipartProfileUpdateAndAccountDeletion(t *testing.T) {
	r := newRouter(t)
	token := register(t, r, "customer", "cust@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("bio", "Noodles, mostly"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/customers/me", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("multipart update: status %d: %s", w.Code, w.Body.String())
	}
	if me := decode[models.Customer](t, w); me.Bio != "Noodles, mostly" || me.FirstName != "Sam" {
		t.Errorf("profile after update = %+v", me)
	}

	if w := do(t, r, http.MethodDelete, "/api/customers/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: status %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/api/customers/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("token of deleted account: status %d, want 401", w.Code)
	}
}
