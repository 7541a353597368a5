package auth

import (
	"context"
	"strings"

	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap"
)

// Result is the outcome of Authenticate: exactly one of Principal or Reason is set.
type Result struct {
	Principal *models.Principal
	Reason    string
}

func Authenticated(p *models.Principal) Result { return Result{Principal: p} }

func Rejected(reason string) Result { return Result{Reason: reason} }

func (r Result) OK() bool { return r.Principal != nil }

// Err converts a rejection into an unauthorized AppError.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return utils.Unauthorized("%s", r.Reason)
}

// Authenticate resolves a bearer token to its principal.
func (s *DefaultAuthService) Authenticate(ctx context.Context, token string) Result {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Rejected("missing token")
	}

	subject, role, err := s.Tokens.ParseToken(token)
	if err != nil {
		return Rejected("invalid or expired token")
	}
	r := models.Role(role)
	if !r.Valid() {
		return Rejected("invalid token role")
	}

	if s.Cache != nil {
		if p, ok := s.Cache.Get(ctx, r, subject); ok {
			return Authenticated(p)
		}
	}

	p, err := s.load(ctx, r, subject)
	if err != nil {
		if !utils.IsKind(err, utils.KindNotFound) {
			s.Logger.Error("Authenticate: failed to load account", zap.String("role", role), zap.Error(err))
		}
		return Rejected("account not found")
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, p)
	}
	return Authenticated(p)
}

func (s *DefaultAuthService) load(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	if role == models.RoleOwner {
		o, err := s.Owners.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return models.OwnerPrincipal(o), nil
	}
	c, err := s.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.CustomerPrincipal(c), nil
}
