package repository

import (
	"context"
	"time"

	"github.com/tiendalia/cart-service/internal/domain/entity"
)

// ProductCatalog supplies live product records. Returns ErrNotFound for
// unknown products.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID int64) (*entity.Product, error)
}

// ProductCache is a TTL cache in front of the catalog.
type ProductCache interface {
	Get(ctx context.Context, productID int64) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID int64) error
}
