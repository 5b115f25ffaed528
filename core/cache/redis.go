package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/logger"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned when an OAuth state is unknown or has expired.
var ErrStateNotFound = stderrors.New("oauth state not found")

type Cache interface {
	SetOAuthState(ctx context.Context, state string, accountID string, ttl time.Duration) error
	// ConsumeOAuthState returns the account bound to state and removes it, so a state is single use.
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func InitRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:InitRedis:Ping:Error", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Cache:InitRedis:Success", "addr", cfg.Addr, "db", cfg.DB)
	return NewRedisCache(client), nil
}

func (c *RedisCache) SetOAuthState(ctx context.Context, state string, accountID string, ttl time.Duration) error {
	return c.client.Set(ctx, constants.RedisKeyOAuthState+state, accountID, ttl).Err()
}

func (c *RedisCache) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	accountID, err := c.client.GetDel(ctx, constants.RedisKeyOAuthState+state).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
