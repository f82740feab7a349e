package pricingcontext

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// Cache holds resolved pricing contexts per customer. Get reports a miss as ok=false.
type Cache interface {
	Get(ctx context.Context, customerID string) (model.PricingContext, bool, error)
	Set(ctx context.Context, customerID string, pc model.PricingContext) error
	Delete(ctx context.Context, customerID string) error
}

type memoryEntry struct {
	pc      model.PricingContext
	expires time.Time
}

// MemoryCache is a per-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, customerID string) (model.PricingContext, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[customerID]
	if !ok {
		return model.PricingContext{}, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, customerID)
		return model.PricingContext{}, false, nil
	}
	return e.pc, true, nil
}

func (c *MemoryCache) Set(_ context.Context, customerID string, pc model.PricingContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[customerID] = memoryEntry{pc: pc, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, customerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, customerID)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisCache shares contexts between instances.
type RedisCache struct {
	client *cache.RedisClient
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *cache.RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "pricing:ctx:"}
}

func (c *RedisCache) Get(ctx context.Context, customerID string) (model.PricingContext, bool, error) {
	var pc model.PricingContext
	raw, err := c.client.Client.Get(ctx, c.prefix+customerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return pc, false, nil
	}
	if err != nil {
		return pc, false, err
	}
	if err := json.Unmarshal(raw, &pc); err != nil {
		return pc, false, err
	}
	return pc, true, nil
}

func (c *RedisCache) Set(ctx context.Context, customerID string, pc model.PricingContext) error {
	raw, err := json.Marshal(pc)
	if err != nil {
		return err
	}
	return c.client.Client.Set(ctx, c.prefix+customerID, raw, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, customerID string) error {
	return c.client.Client.Del(ctx, c.prefix+customerID).Err()
}
