package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okalab/okalab-backend/internal/logger"
)

// RedisCountCache общий кэш для нескольких инстансов API.
// Ошибки Redis не всплывают наружу: промах кэша ведёт к чтению из БД.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCountCache{client: client, ttl: ttl}
}

// NewRedisClient разбирает REDIS_URL и проверяет соединение.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCountCache) Get(ctx context.Context, seminarID uuid.UUID) (int, bool) {
	count, err := c.client.Get(ctx, countKey(seminarID)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("seminar_id", seminarID).Warn("count cache: get failed")
		}
		return 0, false
	}
	return count, true
}

func (c *RedisCountCache) Set(ctx context.Context, seminarID uuid.UUID, count int) {
	if err := c.client.Set(ctx, countKey(seminarID), count, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("seminar_id", seminarID).Warn("count cache: set failed")
	}
}

func (c *RedisCountCache) Invalidate(ctx context.Context, seminarID uuid.UUID) {
	if err := c.client.Del(ctx, countKey(seminarID)).Err(); err != nil {
		logger.Log.WithError(err).WithField("seminar_id", seminarID).Warn("count cache: invalidate failed")
	}
}
