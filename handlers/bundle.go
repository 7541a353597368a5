package handlers

import (
	"dinewise/middleware"
	"dinewise/services/auth"
	"dinewise/services/business"
	"dinewise/services/customer"
	"dinewise/services/deal"
	"dinewise/services/recommendation"
	"dinewise/services/review"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups every endpoint handler with what routes need to guard them.
type HandlerBundle struct {
	Auth   middleware.Authenticator
	Logger *zap.Logger

	// Account endpoints
	RegisterHandler          gin.HandlerFunc
	LoginHandler             gin.HandlerFunc
	GetMeHandler             gin.HandlerFunc
	UpdateMeHandler          gin.HandlerFunc
	DeleteMeHandler          gin.HandlerFunc
	UpdatePreferencesHandler gin.HandlerFunc

	// Public business endpoints
	SearchBusinessesHandler gin.HandlerFunc
	GetBusinessHandler      gin.HandlerFunc
	CuisineSummaryHandler   gin.HandlerFunc
	ListPriceRangesHandler  gin.HandlerFunc
	CreatePriceRangeHandler gin.HandlerFunc

	// Owner business endpoints
	ListMyBusinessesHandler    gin.HandlerFunc
	CreateBusinessHandler      gin.HandlerFunc
	GetMyBusinessHandler       gin.HandlerFunc
	UpdateBusinessHandler      gin.HandlerFunc
	DeleteBusinessHandler      gin.HandlerFunc
	UploadBusinessImageHandler gin.HandlerFunc

	// Review endpoints
	ListReviewsHandler   gin.HandlerFunc
	GetReviewHandler     gin.HandlerFunc
	CreateReviewHandler  gin.HandlerFunc
	UpdateReviewHandler  gin.HandlerFunc
	DeleteReviewHandler  gin.HandlerFunc
	VoteReviewHandler    gin.HandlerFunc
	RespondReviewHandler gin.HandlerFunc

	// Deal endpoints
	CreateDealHandler        gin.HandlerFunc
	ListMyDealsHandler       gin.HandlerFunc
	UpdateDealHandler        gin.HandlerFunc
	DeleteDealHandler        gin.HandlerFunc
	ListBusinessDealsHandler gin.HandlerFunc

	// Recommendations
	RecommendHandler gin.HandlerFunc

	// Operations
	HealthHandler gin.HandlerFunc
}

// Services are the dependencies of every handler.
type Services struct {
	Auth            auth.AuthService
	Customers       customer.CustomerService
	Businesses      business.BusinessService
	Reviews         review.ReviewService
	Deals           deal.DealService
	Recommendations recommendation.RecommendationService
	Health          *utils.HealthMonitor
}

// NewHandlerBundle builds every handler over svc.
func NewHandlerBundle(svc Services, logger *zap.Logger) *HandlerBundle {
	account := &AccountHandler{Auth: svc.Auth, Customers: svc.Customers, Logger: logger}
	biz := &BusinessHandler{Businesses: svc.Businesses, Logger: logger}
	rev := &ReviewHandler{Reviews: svc.Reviews, Logger: logger}
	deals := &DealHandler{Deals: svc.Deals, Logger: logger}
	recs := &RecommendationHandler{Ranker: svc.Recommendations, Logger: logger}

	return &HandlerBundle{
		Auth:   svc.Auth,
		Logger: logger,

		RegisterHandler:          account.Register,
		LoginHandler:             account.Login,
		GetMeHandler:             account.GetMe,
		UpdateMeHandler:          account.UpdateMe,
		DeleteMeHandler:          account.DeleteMe,
		UpdatePreferencesHandler: account.UpdatePreferences,

		SearchBusinessesHandler: biz.Search,
		GetBusinessHandler:      biz.Get,
		CuisineSummaryHandler:   biz.CuisineSummary,
		ListPriceRangesHandler:  biz.ListPriceRanges,
		CreatePriceRangeHandler: biz.CreatePriceRange,

		ListMyBusinessesHandler:    biz.ListMine,
		CreateBusinessHandler:      biz.Create,
		GetMyBusinessHandler:       biz.GetMine,
		UpdateBusinessHandler:      biz.Update,
		DeleteBusinessHandler:      biz.Delete,
		UploadBusinessImageHandler: biz.UploadImage,

		ListReviewsHandler:   rev.List,
		GetReviewHandler:     rev.Get,
		CreateReviewHandler:  rev.Create,
		UpdateReviewHandler:  rev.Update,
		DeleteReviewHandler:  rev.Delete,
		VoteReviewHandler:    rev.Vote,
		RespondReviewHandler: rev.Respond,

		CreateDealHandler:        deals.Create,
		ListMyDealsHandler:       deals.ListMine,
		UpdateDealHandler:        deals.Update,
		DeleteDealHandler:        deals.Delete,
		ListBusinessDealsHandler: deals.ListForBusiness,

		RecommendHandler: recs.Recommend,

		HealthHandler: Health(svc.Health),
	}
}
