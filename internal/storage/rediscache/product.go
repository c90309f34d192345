// Package rediscache wraps the product repository with a Redis cache-aside
// layer. Reads are served from Redis when possible; writes pass through and
// invalidate. A broken Redis never breaks the catalog, every cache error
// degrades to the underlying repository.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

const (
	listKey = "products:all"
	baseTTL = 5 * time.Minute
)

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

var _ product.Repository = (*ProductCache)(nil)

// ProductCache is a caching decorator over a product repository.
type ProductCache struct {
	next   product.Repository
	client *redis.Client
	lg     *zap.Logger
	group  singleflight.Group
	ttl    time.Duration
}

// NewProductCache wraps next with a Redis-backed cache.
func NewProductCache(next product.Repository, client *redis.Client, lg *zap.Logger) *ProductCache {
	return &ProductCache{
		next:   next,
		client: client,
		lg:     lg,
		ttl:    baseTTL,
	}
}

// List returns the catalog, preferring the cached copy. Concurrent misses for
// the same key collapse into a single repository read.
func (c *ProductCache) List(ctx context.Context) ([]product.Product, error) {
	if cached, ok := c.getList(ctx); ok {
		return cached, nil
	}
	v, err, _ := c.group.Do(listKey, func() (interface{}, error) {
		products, err := c.next.List(ctx)
		if err != nil {
			return nil, err
		}
		c.setJSON(ctx, listKey, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

func (c *ProductCache) GetByID(ctx context.Context, id string) (*product.Product, error) {
	key := productKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p product.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.lg.Warn("Dropping undecodable cache entry", zap.String("key", key))
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.lg.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		p, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.setJSON(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*product.Product), nil
}

func (c *ProductCache) Create(ctx context.Context, p *product.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, listKey)
	return nil
}

func (c *ProductCache) Update(ctx context.Context, p *product.Product) error {
	if err := c.next.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, listKey, productKey(p.ID))
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, listKey, productKey(id))
	return nil
}

func (c *ProductCache) SetStock(ctx context.Context, id string, stock int) error {
	if err := c.next.SetStock(ctx, id, stock); err != nil {
		return err
	}
	c.invalidate(ctx, listKey, productKey(id))
	return nil
}

func (c *ProductCache) getList(ctx context.Context) ([]product.Product, bool) {
	data, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.lg.Warn("Cache read failed", zap.String("key", listKey), zap.Error(err))
		}
		return nil, false
	}
	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.lg.Warn("Dropping undecodable cache entry", zap.String("key", listKey))
		c.client.Del(ctx, listKey)
		return nil, false
	}
	return products, true
}

func (c *ProductCache) setJSON(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.lg.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ProductCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.lg.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
