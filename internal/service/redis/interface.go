package redis

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Cache stores JSON-encoded values with a TTL.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	// Incr bumps an integer counter and returns the new value. Get decodes it.
	Incr(ctx context.Context, key string) (int64, error)
}

// RateLimiter counts hits per key in a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type ServiceInterface interface {
	Cache
	RateLimiter
	Health(ctx context.Context) error
	Close() error
}
