package recommendation

import (
	"context"
	"time"

	"dinewise/config"
	businessRepo "dinewise/database/repository/business"
	dealRepo "dinewise/database/repository/deal"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"

	"go.uber.org/zap"
)

type RecommendationService interface {
	Recommend(ctx context.Context, req Request) (*models.Recommendations, error)
}

// Request is the caller context of one recommendation. Every field is optional.
type Request struct {
	Customer *models.Customer
	Location *models.GeoPoint
	// Suburb overrides the customer's preferred suburb when set.
	Suburb string
}

// Settings are the ranker's tunables.
type Settings struct {
	MaxPerCategory     int
	RadiusMeters       float64
	TrendingMinReviews int
	HighRating         float64
	CacheTTL           time.Duration
}

// SettingsFromConfig reads the RECOMMEND_* keys.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		MaxPerCategory:     cfg.RecommendMaxPerCategory,
		RadiusMeters:       cfg.RecommendRadiusMeters,
		TrendingMinReviews: cfg.RecommendTrendingMinReview,
		HighRating:         cfg.RecommendHighRating,
		CacheTTL:           cfg.RecommendCacheTTL,
	}
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{MaxPerCategory: 5, RadiusMeters: 5000, TrendingMinReviews: 10, HighRating: 4, CacheTTL: 5 * time.Minute}
}

// Ranker builds layered recommendations: activity, explicit preferences,
// proximity, then global trending, with deal lists alongside.
type Ranker struct {
	Businesses businessRepo.BusinessRepository
	Reviews    reviewRepo.ReviewRepository
	Deals      dealRepo.DealRepository
	Settings   Settings
	// Cache is optional.
	Cache  Cache
	Logger *zap.Logger
	Now    func() time.Time
}
