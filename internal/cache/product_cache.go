package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"app/internal/domain/model"
)

const (
	productKeyFmt  = "product:%d"
	productsAllKey = "products:all"
)

// redisを使ったread-throughキャッシュ。
// 失敗してもDBにフォールバックするだけなのでエラーは握りつぶしてログに出す
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func (c *RedisProductCache) GetProduct(ctx context.Context, productID int64) (model.Product, bool) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(productKeyFmt, productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get product %d: %v", productID, err)
		}
		return model.Product{}, false
	}
	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Product{}, false
	}
	return p, true
}

func (c *RedisProductCache) SetProduct(ctx context.Context, product model.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, fmt.Sprintf(productKeyFmt, product.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("cache: set product %d: %v", product.ID, err)
	}
}

func (c *RedisProductCache) GetAll(ctx context.Context) ([]model.Product, bool) {
	raw, err := c.client.Get(ctx, productsAllKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get all products: %v", err)
		}
		return nil, false
	}
	var ps []model.Product
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, false
	}
	return ps, true
}

func (c *RedisProductCache) SetAll(ctx context.Context, products []model.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productsAllKey, raw, c.ttl).Err(); err != nil {
		log.Printf("cache: set all products: %v", err)
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, productID int64) {
	if err := c.client.Del(ctx, fmt.Sprintf(productKeyFmt, productID), productsAllKey).Err(); err != nil {
		log.Printf("cache: invalidate product %d: %v", productID, err)
	}
}

func (c *RedisProductCache) InvalidateAll(ctx context.Context) {
	if err := c.client.Del(ctx, productsAllKey).Err(); err != nil {
		log.Printf("cache: invalidate all: %v", err)
	}
}
