package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinewise/models"
	"dinewise/services/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type staticAuth map[string]*models.Principal

func (s staticAuth) Authenticate(_ context.Context, token string) auth.Result {
	if p, ok := s[token]; ok {
		return auth.Authenticated(p)
	}
	return auth.Rejected("invalid or expired token")
}

func init() { gin.SetMode(gin.TestMode) }

func TestRoleMiddlewares(t *testing.T) {
	logger := zaptest.NewLogger(t)
	a := staticAuth{
		"Bearer cust":  models.CustomerPrincipal(&models.Customer{ID: "c1"}),
		"Bearer owner": models.OwnerPrincipal(&models.Owner{ID: "o1"}),
	}

	r := gin.New()
	r.GET("/customer", RequireCustomer(a, logger), func(c *gin.Context) { c.String(http.StatusOK, CustomerOf(c).ID) })
	r.GET("/owner", RequireOwner(a, logger), func(c *gin.Context) { c.String(http.StatusOK, OwnerOf(c).ID) })
	r.GET("/optional", OptionalAuth(a), func(c *gin.Context) {
		if cust := CustomerOf(c); cust != nil {
			c.String(http.StatusOK, cust.ID)
			return
		}
		c.String(http.StatusOK, "anon")
	})

	tests := []struct {
		path, token string
		status      int
		body        string
	}{
		{"/customer", "Bearer cust", http.StatusOK, "c1"},
		{"/customer", "Bearer owner", http.StatusForbidden, ""},
		{"/customer", "", http.StatusUnauthorized, ""},
		{"/owner", "Bearer owner", http.StatusOK, "o1"},
		{"/owner", "Bearer bogus", http.StatusUnauthorized, ""},
		{"/optional", "Bearer cust", http.StatusOK, "c1"},
		{"/optional", "Bearer bogus", http.StatusOK, "anon"},
		{"/optional", "", http.StatusOK, "anon"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.token != "" {
			req.Header.Set("Authorization", tt.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.status {
			t.Errorf("%s with %q: status %d, want %d", tt.path, tt.token, w.Code, tt.status)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Errorf("%s with %q: body %q, want %q", tt.path, tt.token, w.Body.String(), tt.body)
		}
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, zaptest.NewLogger(t)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("203.0.113.7"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := hit("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", code)
	}
	if code := hit("198.51.100.2"); code != http.StatusOK {
		t.Fatalf("other client throttled: status %d", code)
	}
}
