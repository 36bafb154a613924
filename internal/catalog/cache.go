package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Daddtdrey/eatai/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ProductCache caches the per-location catalog listing.
type ProductCache interface {
	Get(ctx context.Context, location string) ([]*domain.Product, error)
	Set(ctx context.Context, location string, products []*domain.Product) error
	Delete(ctx context.Context, location string) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, location string) ([]*domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(location)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []*domain.Product
	if err2 := json.Unmarshal(data, &products); err2 != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err2)
	}
	return products, nil
}

func (r *RedisCache) Set(ctx context.Context, location string, products []*domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	// Jitter spreads expiry so all locations don't refill at once
	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second
	if err := r.client.Set(ctx, cacheKey(location), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, location string) error {
	if err := r.client.Del(ctx, cacheKey(location)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(location string) string {
	return fmt.Sprintf("products:%s", location)
}
