package middleware

import (
	"context"

	"dinewise/models"
	"dinewise/services/auth"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) auth.Result
}

// Principal returns the caller resolved by one of the auth middlewares, or nil.
func Principal(c *gin.Context) *models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*models.Principal); ok {
			return p
		}
	}
	return nil
}

// CustomerOf returns the calling customer, or nil for owners and anonymous callers.
func CustomerOf(c *gin.Context) *models.Customer {
	if p := Principal(c); p != nil && p.Role == models.RoleCustomer {
		return p.Customer
	}
	return nil
}

// OwnerOf returns the calling owner, or nil.
func OwnerOf(c *gin.Context) *models.Owner {
	if p := Principal(c); p != nil && p.Role == models.RoleOwner {
		return p.Owner
	}
	return nil
}

func requireRole(a Authenticator, logger *zap.Logger, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := a.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if !res.OK() {
			utils.WriteError(c, logger, res.Err())
			return
		}
		if res.Principal.Role != role {
			utils.WriteError(c, logger, utils.Forbidden("this action requires a %s account", role))
			return
		}
		c.Set(principalKey, res.Principal)
		c.Next()
	}
}

// RequireCustomer rejects callers that are not authenticated customers.
func RequireCustomer(a Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return requireRole(a, logger, models.RoleCustomer)
}

// RequireOwner rejects callers that are not authenticated owners.
func RequireOwner(a Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return requireRole(a, logger, models.RoleOwner)
}

// OptionalAuth attaches the principal when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if res := a.Authenticate(c.Request.Context(), header); res.OK() {
				c.Set(principalKey, res.Principal)
			}
		}
		c.Next()
	}
}
