package recommendation

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"dinewise/models"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Cache stores computed recommendations for a short while.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Recommendations, bool)
	Set(ctx context.Context, key string, recs *models.Recommendations, ttl time.Duration)
	// Invalidate drops every entry computed for the customer.
	Invalidate(ctx context.Context, customerID string)
}

type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

const cacheKeyPrefix = "recs:"

func customerKeyPrefix(customerID string) string {
	return cacheKeyPrefix + customerID + ":"
}

// cacheKey identifies the inputs that shape a recommendation. Preferences are
// hashed in so an edited profile does not serve a stale result.
func cacheKey(req Request) string {
	who := "anon"
	h := fnv.New32a()
	if c := req.Customer; c != nil {
		who = c.ID
		cuisines := append([]string(nil), c.PreferredCuisines...)
		sort.Strings(cuisines)
		h.Write([]byte(strings.Join(cuisines, ",") + "|" + c.PreferredSuburb))
	}
	where := "-"
	if req.Location.Valid() {
		where = fmt.Sprintf("%.3f,%.3f", req.Location.Coordinates[1], req.Location.Coordinates[0])
	}
	return fmt.Sprintf("%s%x:%s:%s", customerKeyPrefix(who), h.Sum32(), where, strings.ToLower(req.Suburb))
}

// Get misses on any Redis or decode failure.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.Recommendations, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("recommendation cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var recs models.Recommendations
	if err := json.Unmarshal(val, &recs); err != nil {
		c.logger.Warn("corrupt recommendation cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &recs, true
}

func (c *RedisCache) Set(ctx context.Context, key string, recs *models.Recommendations, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(recs)
	if err != nil {
		c.logger.Warn("failed to encode recommendations", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("recommendation cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate scans for the customer's keys; a customer has one entry per
// location and suburb they asked about.
func (c *RedisCache) Invalidate(ctx context.Context, customerID string) {
	var keys []string
	iter := c.client.Scan(ctx, 0, customerKeyPrefix(customerID)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("recommendation cache scan failed", zap.String("customerId", customerID), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("recommendation cache invalidation failed", zap.String("customerId", customerID), zap.Error(err))
	}
}
