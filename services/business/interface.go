package business

import (
	"context"

	businessRepo "dinewise/database/repository/business"
	dealRepo "dinewise/database/repository/deal"
	"dinewise/models"
	"dinewise/services/storage"

	"go.uber.org/zap"
)

type BusinessService interface {
	// Owner operations.
	Create(ctx context.Context, ownerID string, in CreateInput) (*models.Business, error)
	ListMine(ctx context.Context, ownerID string) ([]models.Business, error)
	GetMine(ctx context.Context, ownerID, id string) (*models.BusinessDetail, error)
	Update(ctx context.Context, ownerID, id string, in UpdateInput) (*models.Business, error)
	Delete(ctx context.Context, ownerID, id string) error
	AddImage(ctx context.Context, ownerID, id, localPath string) (*models.Business, error)

	// Public operations.
	Get(ctx context.Context, id string) (*models.BusinessDetail, error)
	Search(ctx context.Context, criteria businessRepo.SearchCriteria) (*SearchPage, error)
	CuisineSummary(ctx context.Context) ([]models.CuisineCount, error)
	ListPriceRanges(ctx context.Context) ([]models.PriceRange, error)
	CreatePriceRange(ctx context.Context, in PriceRangeInput) (*models.PriceRange, error)
}

// DefaultBusinessService is the production implementation.
type DefaultBusinessService struct {
	Businesses  businessRepo.BusinessRepository
	Stats       businessRepo.StatsRepository
	PriceRanges businessRepo.PriceRangeRepository
	Deals       dealRepo.DealRepository
	Images      storage.ImageStore
	Logger      *zap.Logger
}

// CreateInput holds the fields of a new business.
type CreateInput struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Description  string   `json:"description" validate:"max=2000"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address" validate:"required"`
	Website      string   `json:"website" validate:"omitempty,url"`
	Cuisines     []string `json:"cuisines"`
	PriceRangeID string   `json:"priceRangeId"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// UpdateInput is a partial edit; nil fields keep their value.
type UpdateInput struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=120"`
	Description  *string   `json:"description" validate:"omitempty,max=2000"`
	Email        *string   `json:"email" validate:"omitempty,email"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address" validate:"omitempty,min=1"`
	Website      *string   `json:"website" validate:"omitempty,url"`
	Cuisines     *[]string `json:"cuisines"`
	PriceRangeID *string   `json:"priceRangeId"`
	Latitude     *float64  `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64  `json:"longitude" validate:"omitempty,longitude"`
}

type PriceRangeInput struct {
	LowerBound float64 `json:"lowerBound" validate:"gte=0"`
	UpperBound float64 `json:"upperBound" validate:"gtfield=LowerBound"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Businesses []models.Business `json:"businesses"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
}
