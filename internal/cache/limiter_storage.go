package cache

import (
	"context"
	"time"
)

const limiterPrefix = "limiter:"

// LimiterStorage lets fiber's limiter middleware keep its counters in Redis so
// limits hold across instances. It satisfies fiber.Storage.
type LimiterStorage struct {
	redis   *RedisCache
	timeout time.Duration
}

func NewLimiterStorage(redis *RedisCache) *LimiterStorage {
	return &LimiterStorage{redis: redis, timeout: time.Second}
}

func (s *LimiterStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *LimiterStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.redis.Get(ctx, limiterPrefix+key)
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.redis.Set(ctx, limiterPrefix+key, val, exp)
}

func (s *LimiterStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.redis.Delete(ctx, limiterPrefix+key)
}

// Reset removes only limiter keys; the database is shared with other caches.
func (s *LimiterStorage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.redis.DeletePattern(ctx, limiterPrefix+"*")
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *LimiterStorage) Close() error {
	return nil
}
