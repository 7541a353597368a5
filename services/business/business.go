package business

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"dinewise/models"
	"dinewise/services/storage"
	"dinewise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func cleanCuisines(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

func location(lat, lng *float64) (*models.GeoPoint, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, utils.Validation("latitude and longitude must be given together")
	}
	return models.NewGeoPoint(*lat, *lng), nil
}

// Create registers a business for the owner with zeroed rating aggregates.
func (s *DefaultBusinessService) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Business, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	loc, err := location(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	exists, err := s.Businesses.ExistsByName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.Conflict("you already have a business with this name")
	}

	b := &models.Business{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         name,
		Description:  in.Description,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Website:      in.Website,
		Cuisines:     cleanCuisines(in.Cuisines),
		PriceRangeID: in.PriceRangeID,
		Location:     loc,
	}
	if err := s.Businesses.Create(ctx, b); err != nil {
		return nil, err
	}
	s.Logger.Info("business created", zap.String("businessId", b.ID), zap.String("ownerId", ownerID))
	return b, nil
}

func (s *DefaultBusinessService) ListMine(ctx context.Context, ownerID string) ([]models.Business, error) {
	return s.Businesses.GetByOwner(ctx, ownerID)
}

// owned loads a business and hides it from anyone but its owner.
func (s *DefaultBusinessService) owned(ctx context.Context, ownerID, id string) (*models.Business, error) {
	b, err := s.Businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, utils.NotFound("business %s not found", id)
	}
	return b, nil
}

func (s *DefaultBusinessService) GetMine(ctx context.Context, ownerID, id string) (*models.BusinessDetail, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, b)
}

func (s *DefaultBusinessService) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*models.Business, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != b.Name {
			exists, err := s.Businesses.ExistsByName(ctx, ownerID, name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, utils.Conflict("you already have a business with this name")
			}
			b.Name = name
		}
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Email != nil {
		b.Email = *in.Email
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.Address != nil {
		b.Address = *in.Address
	}
	if in.Website != nil {
		b.Website = *in.Website
	}
	if in.Cuisines != nil {
		b.Cuisines = cleanCuisines(*in.Cuisines)
	}
	if in.PriceRangeID != nil {
		b.PriceRangeID = *in.PriceRangeID
	}
	if in.Latitude != nil || in.Longitude != nil {
		if b.Location, err = location(in.Latitude, in.Longitude); err != nil {
			return nil, err
		}
	}

	if err := s.Businesses.UpdateProfile(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the business with its histogram, its deals and its images.
// Reviews stay for the customers who wrote them.
func (s *DefaultBusinessService) Delete(ctx context.Context, ownerID, id string) error {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Businesses.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	var errs []error
	if err := s.Stats.Delete(ctx, id); err != nil {
		errs = append(errs, err)
	}
	if err := s.Deals.DeleteByBusiness(ctx, id); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.Logger.Error("business deleted but cleanup failed", zap.String("businessId", id), zap.Error(err))
	}

	images := b.Images
	if b.ImageURL != "" && !slices.Contains(images, b.ImageURL) {
		images = append(images, b.ImageURL)
	}
	for _, img := range images {
		if publicID := storage.PublicIDFromURL(img); publicID != "" {
			if err := s.Images.Delete(ctx, publicID); err != nil {
				s.Logger.Warn("failed to delete business image", zap.String("publicId", publicID), zap.Error(err))
			}
		}
	}
	s.Logger.Info("business deleted", zap.String("businessId", id), zap.String("ownerId", ownerID))
	return nil
}

// AddImage uploads an image to the business gallery. The first image also
// becomes the cover.
func (s *DefaultBusinessService) AddImage(ctx context.Context, ownerID, id, localPath string) (*models.Business, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	publicID := fmt.Sprintf("%s-%d", b.ID, time.Now().UnixNano())
	url, err := s.Images.Upload(ctx, localPath, "businesses", publicID)
	if err != nil {
		return nil, err
	}
	b.Images = append(b.Images, url)
	if b.ImageURL == "" {
		b.ImageURL = url
	}
	if err := s.Businesses.UpdateProfile(ctx, b); err != nil {
		if delErr := s.Images.Delete(ctx, "businesses/"+publicID); delErr != nil {
			s.Logger.Warn("failed to remove orphaned image", zap.String("publicId", publicID), zap.Error(delErr))
		}
		return nil, err
	}
	return b, nil
}
