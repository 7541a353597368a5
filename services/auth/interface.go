package auth

import (
	"context"

	accountRepo "dinewise/database/repository/account"
	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.AuthToken, error)
	Login(ctx context.Context, in LoginInput) (*models.AuthToken, error)
	Authenticate(ctx context.Context, token string) Result
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Customers accountRepo.CustomerRepository
	Owners    accountRepo.OwnerRepository
	Tokens    *utils.TokenIssuer
	// Cache is optional; without it every request loads the account.
	Cache  PrincipalCache
	Logger *zap.Logger
}

type RegisterInput struct {
	Role      models.Role `json:"role" validate:"required,oneof=customer owner"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8"`
	FirstName string      `json:"firstName" validate:"required"`
	LastName  string      `json:"lastName" validate:"required"`
}

type LoginInput struct {
	Role     models.Role `json:"role" validate:"required,oneof=customer owner"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
}
