package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func statusKey(orderID int64) string {
	return "order:status:" + strconv.FormatInt(orderID, 10)
}

func (r RedisCache) SetStatus(ctx context.Context, orderID int64, status domain.Status) error {
	return r.rdb.Set(ctx, statusKey(orderID), string(status), r.ttl).Err()
}

func (r RedisCache) GetStatus(ctx context.Context, orderID int64) (domain.Status, bool, error) {
	v, err := r.rdb.Get(ctx, statusKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.Status(v), true, nil
}

var _ usecase.OrderCache = (*RedisCache)(nil)
