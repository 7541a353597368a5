package businessRepo

import (
	"context"

	"dinewise/models"
)

// BusinessRepository defines methods for business data access.
type BusinessRepository interface {
	// Create inserts a new business with zeroed aggregates.
	Create(ctx context.Context, b *models.Business) error
	// GetByID retrieves a business by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Business, error)
	// GetByIDs retrieves every business whose ID is in ids.
	GetByIDs(ctx context.Context, ids []string) ([]models.Business, error)
	// GetByOwner lists an owner's businesses, newest first.
	GetByOwner(ctx context.Context, ownerID string) ([]models.Business, error)
	// ExistsByName reports whether the owner already has a business with this name.
	ExistsByName(ctx context.Context, ownerID, name string) (bool, error)
	// UpdateProfile writes the owner-editable fields. Aggregates are never touched.
	UpdateProfile(ctx context.Context, b *models.Business) error
	// Delete removes an owner's business.
	Delete(ctx context.Context, id, ownerID string) error
	// Search finds businesses by name/cuisine text with pagination.
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Business, int64, error)
	// FindRanked returns businesses matching q sorted by rating desc, review_count desc.
	FindRanked(ctx context.Context, q RankQuery) ([]models.Business, error)
	// CuisineSummary counts businesses per cuisine tag.
	CuisineSummary(ctx context.Context) ([]models.CuisineCount, error)

	// ApplyRatingDelta atomically adds delta to the rating totals and recomputes the means.
	ApplyRatingDelta(ctx context.Context, id string, delta models.RatingDelta) (*models.Business, error)
	// SetRatingAggregate overwrites totals and review count, recomputing the means.
	SetRatingAggregate(ctx context.Context, id string, totals models.RatingTotals, count int) (*models.Business, error)
}

// StatsRepository maintains the per-business star histogram.
type StatsRepository interface {
	// IncrementBuckets adds delta[star] to each bucket, creating the document if absent.
	IncrementBuckets(ctx context.Context, businessID string, delta map[int]int) error
	// Get returns the histogram; a business with no document gets all-zero counts.
	Get(ctx context.Context, businessID string) (*models.BusinessStats, error)
	// Replace overwrites the histogram.
	Replace(ctx context.Context, stats models.BusinessStats) error
	// Delete removes the histogram of a deleted business.
	Delete(ctx context.Context, businessID string) error
}

// PriceRangeRepository stores the price brackets.
type PriceRangeRepository interface {
	List(ctx context.Context) ([]models.PriceRange, error)
	Create(ctx context.Context, pr *models.PriceRange) error
}

// SearchCriteria holds parameters for the public business search.
type SearchCriteria struct {
	Query            string   // Matches name or any cuisine, case-insensitive.
	SelectedCuisines []string // All must be present, case-insensitive.
	SortBy           string   // Field sorted descending.
	Page             int
	PageSize         int
}

// RankQuery describes one layer of the recommendation ranker.
type RankQuery struct {
	// Cuisines and PriceRangeIDs are OR-ed together when both are set.
	Cuisines      []string
	PriceRangeIDs []string

	// Near restricts to RadiusMeters around a point; otherwise AddressContains
	// restricts by a case-insensitive address substring.
	Near            *models.GeoPoint
	RadiusMeters    float64
	AddressContains string

	MinReviewCount int
	ExcludeIDs     []string
	// Limit of 0 means unlimited.
	Limit int
}
