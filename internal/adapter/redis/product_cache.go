package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/repository"
)

const productCacheKeyPrefix = "product_detail:"

type productCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) repository.ProductCache {
	return &productCache{client: client}
}

func (r *productCache) key(productID int64) string {
	return productCacheKeyPrefix + strconv.FormatInt(productID, 10)
}

func (r *productCache) Get(ctx context.Context, productID int64) (*entity.Product, error) {
	val, err := r.client.Get(ctx, r.key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d from redis: %w", productID, err)
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		// Self-heal: a payload we cannot decode is useless, drop it.
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal cached product %d: %w", productID, err)
	}
	return &product, nil
}

func (r *productCache) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	if product == nil {
		return errors.New("cannot cache nil product")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d: %w", product.ProductID, err)
	}
	if err := r.client.Set(ctx, r.key(product.ProductID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product %d to redis: %w", product.ProductID, err)
	}
	return nil
}

func (r *productCache) Delete(ctx context.Context, productID int64) error {
	if err := r.client.Del(ctx, r.key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete product %d from redis: %w", productID, err)
	}
	return nil
}
