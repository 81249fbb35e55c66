// Package cache keeps slow-moving catalogue reads (inventory, forecast,
// designs) in redis in front of the data service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"decorops/internal/metrics"
	"decorops/internal/models"
)

// Backend is the subset of the data service the catalogue serves.
type Backend interface {
	InventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	InventoryForecast(ctx context.Context) ([]models.ForecastMonth, error)
	CreateInventoryItem(ctx context.Context, payload models.NewInventoryItem) (models.InventoryItem, error)
	Designs(ctx context.Context) ([]models.Design, error)
	DuplicateDesign(ctx context.Context, designID string) (models.Design, error)
}

const (
	inventoryKey = "decorops:catalog:inventory"
	forecastKey  = "decorops:catalog:forecast"
	designsKey   = "decorops:catalog:designs"
)

// Catalog wraps a Backend with a redis read-through cache.
type Catalog struct {
	base   Backend
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalog builds the cache. A nil client or zero TTL disables caching.
func NewCatalog(base Backend, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Catalog {
	if base == nil {
		panic("cache.NewCatalog: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{base: base, redis: client, ttl: ttl, logger: logger}
}

// InventoryItems returns cached stock, falling back to the data service.
func (c *Catalog) InventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	return readThrough(ctx, c, inventoryKey, "inventory", c.base.InventoryItems)
}

// InventoryForecast returns the cached monthly forecast.
func (c *Catalog) InventoryForecast(ctx context.Context) ([]models.ForecastMonth, error) {
	return readThrough(ctx, c, forecastKey, "forecast", c.base.InventoryForecast)
}

// Designs returns the cached design repository.
func (c *Catalog) Designs(ctx context.Context) ([]models.Design, error) {
	return readThrough(ctx, c, designsKey, "designs", c.base.Designs)
}

// CreateInventoryItem writes through and evicts stock and forecast.
func (c *Catalog) CreateInventoryItem(ctx context.Context, payload models.NewInventoryItem) (models.InventoryItem, error) {
	item, err := c.base.CreateInventoryItem(ctx, payload)
	if err != nil {
		return models.InventoryItem{}, err
	}
	c.evict(ctx, inventoryKey, forecastKey)
	return item, nil
}

// DuplicateDesign writes through and evicts the design list.
func (c *Catalog) DuplicateDesign(ctx context.Context, designID string) (models.Design, error) {
	design, err := c.base.DuplicateDesign(ctx, designID)
	if err != nil {
		return models.Design{}, err
	}
	c.evict(ctx, designsKey)
	return design, nil
}

func readThrough[T any](ctx context.Context, c *Catalog, key, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if cached, ok := load[T](ctx, c, key); ok {
		metrics.RecordCacheLookup(name, true)
		return cached, nil
	}
	metrics.RecordCacheLookup(name, false)

	fresh, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	store(ctx, c, key, fresh)
	return fresh, nil
}

func load[T any](ctx context.Context, c *Catalog, key string) ([]T, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return out, true
}

func store[T any](ctx context.Context, c *Catalog, key string, value []T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Catalog) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache evict failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
