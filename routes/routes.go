package routes

import (
	"net/http"
	"time"

	"dinewise/handlers"
	"dinewise/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers registration and login.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/login", hb.LoginHandler)
	}
}

// RegisterCustomerRoutes registers the signed-in customer's profile endpoints.
func RegisterCustomerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/customers/me")
	{
		api.Use(middleware.RequireCustomer(hb.Auth, hb.Logger))
		api.GET("", hb.GetMeHandler)
		api.PATCH("", hb.UpdateMeHandler)
		api.DELETE("", hb.DeleteMeHandler)
		api.PUT("/preferences", hb.UpdatePreferencesHandler)
	}
}

// RegisterBusinessRoutes registers the public catalogue and the owner's business management.
func RegisterBusinessRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	public := r.Group("/api")
	{
		public.GET("/businesses/search", hb.SearchBusinessesHandler)
		public.GET("/businesses/:id", hb.GetBusinessHandler)
		public.GET("/cuisines/summary", hb.CuisineSummaryHandler)
		public.GET("/price-ranges", hb.ListPriceRangesHandler)
		public.POST("/price-ranges", middleware.RequireOwner(hb.Auth, hb.Logger), hb.CreatePriceRangeHandler)
	}

	owner := r.Group("/api/owner/businesses")
	{
		owner.Use(middleware.RequireOwner(hb.Auth, hb.Logger))
		owner.GET("", hb.ListMyBusinessesHandler)
		owner.POST("", hb.CreateBusinessHandler)
		owner.GET("/:id", hb.GetMyBusinessHandler)
		owner.PATCH("/:id", hb.UpdateBusinessHandler)
		owner.DELETE("/:id", hb.DeleteBusinessHandler)
		owner.POST("/:id/images", hb.UploadBusinessImageHandler)
	}
}

// RegisterReviewRoutes registers review reads (optionally signed in) and writes.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		optional := middleware.OptionalAuth(hb.Auth)
		api.GET("", optional, hb.ListReviewsHandler)
		api.GET("/:id", optional, hb.GetReviewHandler)

		customer := middleware.RequireCustomer(hb.Auth, hb.Logger)
		api.POST("", customer, hb.CreateReviewHandler)
		api.POST("/vote", customer, hb.VoteReviewHandler)
		api.PATCH("/:id", customer, hb.UpdateReviewHandler)
		api.DELETE("/:id", customer, hb.DeleteReviewHandler)

		api.POST("/:id/response", middleware.RequireOwner(hb.Auth, hb.Logger), hb.RespondReviewHandler)
	}
}

// RegisterDealRoutes registers owner deal management and the public deal listing.
func RegisterDealRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/deals")
	{
		api.GET("/business/:businessId", hb.ListBusinessDealsHandler)

		owner := middleware.RequireOwner(hb.Auth, hb.Logger)
		api.POST("", owner, hb.CreateDealHandler)
		api.GET("/mine", owner, hb.ListMyDealsHandler)
		api.PATCH("/:id", owner, hb.UpdateDealHandler)
		api.DELETE("/:id", owner, hb.DeleteDealHandler)
	}
}

// RegisterRecommendationRoutes registers the recommendation endpoint. Signing in is optional.
func RegisterRecommendationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/recommendations", middleware.OptionalAuth(hb.Auth), hb.RecommendHandler)
}

// RegisterOpsRoutes registers health and metrics.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": true, "message": "Route not found"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterCustomerRoutes(r, hb)
	RegisterBusinessRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterDealRoutes(r, hb)
	RegisterRecommendationRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
