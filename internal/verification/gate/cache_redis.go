package gate

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
)

const statusKeyPrefix = "kyc:gate:"

// RedisCache stores entity statuses under kyc:gate:<ENTITY_TYPE>:<entityId>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func statusKey(entityType models.EntityType, entityID domain.EntityID) string {
	return statusKeyPrefix + string(entityType) + ":" + string(entityID)
}

func (c *RedisCache) Get(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (models.Status, bool, error) {
	v, err := c.client.Get(ctx, statusKey(entityType, entityID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	status := models.Status(v)
	if !status.IsValid() {
		return "", false, nil
	}
	return status, true, nil
}

func (c *RedisCache) Set(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status) error {
	return c.client.Set(ctx, statusKey(entityType, entityID), string(status), c.ttl).Err()
}

func (c *RedisCache) Fill(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status) error {
	return c.client.SetNX(ctx, statusKey(entityType, entityID), string(status), c.ttl).Err()
}
