package auth

import (
	"context"
	"fmt"
	"time"

	"dinewise/models"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// PrincipalCache keeps resolved accounts keyed by role and id.
type PrincipalCache interface {
	Get(ctx context.Context, role models.Role, id string) (*models.Principal, bool)
	Set(ctx context.Context, p *models.Principal)
	// Invalidate drops the entry after the account changes.
	Invalidate(ctx context.Context, role models.Role, id string)
}

const principalTTL = 10 * time.Minute

type RedisPrincipalCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPrincipalCache(client *redis.Client, logger *zap.Logger) *RedisPrincipalCache {
	return &RedisPrincipalCache{client: client, logger: logger}
}

func principalKey(role models.Role, id string) string {
	return fmt.Sprintf("principal:%s:%s", role, id)
}

func (c *RedisPrincipalCache) Get(ctx context.Context, role models.Role, id string) (*models.Principal, bool) {
	data, err := c.client.Get(ctx, principalKey(role, id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("principal cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var p models.Principal
	if err := json.Unmarshal(data, &p); err != nil || p.ID() != id {
		return nil, false
	}
	return &p, true
}

func (c *RedisPrincipalCache) Set(ctx context.Context, p *models.Principal) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("failed to encode principal", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, principalKey(p.Role, p.ID()), data, principalTTL).Err(); err != nil {
		c.logger.Warn("principal cache write failed", zap.Error(err))
	}
}

func (c *RedisPrincipalCache) Invalidate(ctx context.Context, role models.Role, id string) {
	if err := c.client.Del(ctx, principalKey(role, id)).Err(); err != nil {
		c.logger.Warn("principal cache invalidation failed", zap.Error(err))
	}
}
