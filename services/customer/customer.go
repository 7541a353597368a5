package customer

import (
	"context"
	"strings"
	"time"

	accountRepo "dinewise/database/repository/account"
	"dinewise/models"
	"dinewise/services/storage"
	"dinewise/utils"

	"go.uber.org/zap"
)

type CustomerService interface {
	Get(ctx context.Context, id string) (*models.Customer, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.Customer, error)
	UpdatePreferences(ctx context.Context, id string, in PreferencesInput) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
}

const imageFolder = "customers"

// Invalidator drops cached copies of an account after it changes.
type Invalidator interface {
	Invalidate(ctx context.Context, role models.Role, id string)
}

// Forgetter drops data derived from a customer, such as cached recommendations.
type Forgetter interface {
	ForgetCustomer(ctx context.Context, customerID string)
}

type DefaultCustomerService struct {
	Customers accountRepo.CustomerRepository
	// Images stores profile pictures as customers/<id>. Nil disables uploads.
	Images storage.ImageStore
	// Sessions and Recommendations may be nil.
	Sessions        Invalidator
	Recommendations Forgetter
	Logger          *zap.Logger
}

// ProfileInput is a partial edit; nil fields keep their value. A new image
// takes precedence over RemoveProfileImage.
type ProfileInput struct {
	FirstName          *string `json:"firstName" form:"firstName" validate:"omitempty,min=1"`
	LastName           *string `json:"lastName" form:"lastName" validate:"omitempty,min=1"`
	Bio                *string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	RemoveProfileImage bool    `json:"removeProfileImage" form:"removeProfileImage"`
	// ImagePath is a local file to upload as the profile image.
	ImagePath string `json:"-" form:"-"`
}

type PreferencesInput struct {
	PreferredCuisines []string `json:"preferredCuisines" validate:"max=20"`
	PreferredSuburb   string   `json:"preferredSuburb"`
}

func (s *DefaultCustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	return s.Customers.GetByID(ctx, id)
}

func (s *DefaultCustomerService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.Customer, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	c, err := s.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Bio != nil {
		c.Bio = *in.Bio
	}

	previous := c.ProfileImage
	switch {
	case in.ImagePath != "":
		url, err := s.images().Upload(ctx, in.ImagePath, imageFolder, id)
		if err != nil {
			return nil, err
		}
		c.ProfileImage = url
	case in.RemoveProfileImage:
		c.ProfileImage = ""
	}

	c.UpdatedAt = time.Now()
	if err := s.Customers.UpdateProfile(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	// Uploads reuse the customer's public id, so a replaced image is only
	// deleted when it lived elsewhere.
	if old := storage.PublicIDFromURL(previous); old != "" && old != storage.PublicIDFromURL(c.ProfileImage) {
		s.deleteImage(ctx, old)
	}
	return c, nil
}

// Delete removes the account and its profile image. The customer's reviews
// stay, so business aggregates and other customers' upvotes are unaffected.
func (s *DefaultCustomerService) Delete(ctx context.Context, id string) error {
	c, err := s.Customers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Customers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if s.Recommendations != nil {
		s.Recommendations.ForgetCustomer(ctx, id)
	}
	if publicID := storage.PublicIDFromURL(c.ProfileImage); publicID != "" {
		s.deleteImage(ctx, publicID)
	}
	s.Logger.Info("customer deleted", zap.String("customerId", id))
	return nil
}

func (s *DefaultCustomerService) images() storage.ImageStore {
	if s.Images == nil {
		return storage.DisabledStore{}
	}
	return s.Images
}

func (s *DefaultCustomerService) deleteImage(ctx context.Context, publicID string) {
	if err := s.images().Delete(ctx, publicID); err != nil {
		s.Logger.Warn("failed to delete profile image", zap.String("publicId", publicID), zap.Error(err))
	}
}

// UpdatePreferences replaces the preferred cuisines (trimmed, deduplicated) and suburb.
func (s *DefaultCustomerService) UpdatePreferences(ctx context.Context, id string, in PreferencesInput) (*models.Customer, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	cuisines := make([]string, 0, len(in.PreferredCuisines))
	seen := map[string]bool{}
	for _, cuisine := range in.PreferredCuisines {
		cuisine = strings.TrimSpace(cuisine)
		if cuisine == "" || seen[strings.ToLower(cuisine)] {
			continue
		}
		seen[strings.ToLower(cuisine)] = true
		cuisines = append(cuisines, cuisine)
	}

	c, err := s.Customers.UpdatePreferences(ctx, id, cuisines, strings.TrimSpace(in.PreferredSuburb))
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("customer preferences updated", zap.String("customerId", id), zap.Strings("cuisines", cuisines))
	s.invalidate(ctx, id)
	return c, nil
}

func (s *DefaultCustomerService) invalidate(ctx context.Context, id string) {
	if s.Sessions != nil {
		s.Sessions.Invalidate(ctx, models.RoleCustomer, id)
	}
}
