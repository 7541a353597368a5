package auth

import (
	"context"
	"time"

	"dinewise/models"
	"dinewise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a customer or owner account and signs it in.
func (s *DefaultAuthService) Register(ctx context.Context, in RegisterInput) (*models.AuthToken, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("Register: failed to hash password", zap.Error(err))
		return nil, utils.Internal("registration failed, please try again", err)
	}

	now := time.Now()
	var principal *models.Principal
	switch in.Role {
	case models.RoleCustomer:
		c := &models.Customer{
			ID:           uuid.New().String(),
			Email:        in.Email,
			PasswordHash: string(hash),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.Customers.Create(ctx, c); err != nil {
			return nil, err
		}
		principal = models.CustomerPrincipal(c)
	case models.RoleOwner:
		o := &models.Owner{
			ID:           uuid.New().String(),
			Email:        in.Email,
			PasswordHash: string(hash),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.Owners.Create(ctx, o); err != nil {
			return nil, err
		}
		principal = models.OwnerPrincipal(o)
	}

	s.Logger.Info("account registered", zap.String("role", string(in.Role)), zap.String("id", principal.ID()))
	return s.issue(principal)
}

// Login verifies the password of the account with this email and role.
func (s *DefaultAuthService) Login(ctx context.Context, in LoginInput) (*models.AuthToken, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var (
		principal *models.Principal
		hash      string
		err       error
	)
	switch in.Role {
	case models.RoleCustomer:
		var c *models.Customer
		if c, err = s.Customers.GetByEmail(ctx, in.Email); err == nil {
			principal, hash = models.CustomerPrincipal(c), c.PasswordHash
		}
	case models.RoleOwner:
		var o *models.Owner
		if o, err = s.Owners.GetByEmail(ctx, in.Email); err == nil {
			principal, hash = models.OwnerPrincipal(o), o.PasswordHash
		}
	}
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		s.Logger.Error("Login: failed to fetch account", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)); err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}
	return s.issue(principal)
}

func (s *DefaultAuthService) issue(p *models.Principal) (*models.AuthToken, error) {
	token, exp, err := s.Tokens.GenerateToken(p.ID(), string(p.Role))
	if err != nil {
		s.Logger.Error("failed to sign token", zap.Error(err))
		return nil, utils.Internal("could not issue token", err)
	}
	return &models.AuthToken{Token: token, Role: p.Role, ExpiresAt: exp, Principal: p}, nil
}
