package business

import (
	"context"

	"dinewise/database/repository"
	businessRepo "dinewise/database/repository/business"
	"dinewise/models"
	"dinewise/utils"
)

func (s *DefaultBusinessService) detail(ctx context.Context, b *models.Business) (*models.BusinessDetail, error) {
	stats, err := s.Stats.Get(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &models.BusinessDetail{Business: *b, Stats: *stats}, nil
}

// Get returns a business with its star histogram.
func (s *DefaultBusinessService) Get(ctx context.Context, id string) (*models.BusinessDetail, error) {
	b, err := s.Businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, b)
}

func (s *DefaultBusinessService) Search(ctx context.Context, criteria businessRepo.SearchCriteria) (*SearchPage, error) {
	criteria.Page, criteria.PageSize = repository.NormalizePage(criteria.Page, criteria.PageSize)
	found, total, err := s.Businesses.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &SearchPage{Businesses: found, Total: total, Page: criteria.Page, PageSize: criteria.PageSize}, nil
}

func (s *DefaultBusinessService) CuisineSummary(ctx context.Context) ([]models.CuisineCount, error) {
	return s.Businesses.CuisineSummary(ctx)
}

func (s *DefaultBusinessService) ListPriceRanges(ctx context.Context) ([]models.PriceRange, error) {
	return s.PriceRanges.List(ctx)
}

func (s *DefaultBusinessService) CreatePriceRange(ctx context.Context, in PriceRangeInput) (*models.PriceRange, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	pr := &models.PriceRange{LowerBound: in.LowerBound, UpperBound: in.UpperBound}
	if err := s.PriceRanges.Create(ctx, pr); err != nil {
		return nil, err
	}
	return pr, nil
}
