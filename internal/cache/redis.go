package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const tripsPrefix = "cache:trips:"

type RedisCache struct {
	client   *redis.Client
	tripsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tripsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tripsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, tripsTTL: tripsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetTrips(ctx context.Context, key string) ([]domain.TravelPackage, error) {
	data, err := c.client.Get(ctx, tripsKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	trips := make([]domain.TravelPackage, 0)
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, fmt.Errorf("decode cached trips: %w", err)
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, key string, trips []domain.TravelPackage) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey(key), payload, c.tripsTTL).Err()
}

// InvalidateTrips drops every cached listing.
func (c *RedisCache) InvalidateTrips(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, tripsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseLock(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func tripsKey(key string) string {
	return tripsPrefix + key
}
