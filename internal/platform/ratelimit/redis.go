package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rigaestates/listings-api/pkg/config"
)

type Limiter interface {
	// Allow reports whether another request is permitted for the key
	// within the window. Fails open on store errors.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(cfg config.RedisConfig) (Limiter, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB

	return &redisLimiter{client: redis.NewClient(opts)}, nil
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	// Hash the key for privacy; it may contain an email or IP.
	sum := sha256.Sum256([]byte(key))
	rk := fmt.Sprintf("ratelimit:%x", sum)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := l.client.Incr(ctx, rk).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, rk, window).Err(); err != nil {
			return true, err
		}
	}

	return count <= int64(limit), nil
}

// NoopLimiter allows everything; used in tests and when Redis is absent.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}
