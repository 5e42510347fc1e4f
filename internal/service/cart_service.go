package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
)

const defaultProductCacheTTL = 5 * time.Minute

// CartView is the read-only cart representation handed to transport.
type CartView struct {
	Lines      []entity.CartLine `json:"lineas"`
	Total      float64           `json:"total"`
	TotalItems int               `json:"totalArticulos"`
}

type CartService interface {
	AddItem(ctx context.Context, sessionID string, productID int64, variantID *int64, customization *entity.Customization) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (*CartView, error)
	GetCart(ctx context.Context, sessionID string) (*CartView, error)
	ClearCart(ctx context.Context, sessionID string) error
	Availability(ctx context.Context, sessionID string, productID int64) (int, error)
}

// cartService is the stock-aware caller sitting in front of the cart stores.
// The store itself is a dumb ledger; this layer fetches live catalog data and
// enforces the stock ceiling before any add reaches the store.
type cartService struct {
	carts           *CartManager
	catalog         repository.ProductCatalog
	productCache    repository.ProductCache
	log             logger.Logger
	productCacheTTL time.Duration
}

type CartServiceConfig struct {
	ProductCacheTTL time.Duration
}

func NewCartService(
	carts *CartManager,
	catalog repository.ProductCatalog,
	productCache repository.ProductCache,
	log logger.Logger,
	cfg CartServiceConfig,
) CartService {
	ttl := cfg.ProductCacheTTL
	if ttl <= 0 {
		ttl = defaultProductCacheTTL
	}
	return &cartService{
		carts:           carts,
		catalog:         catalog,
		productCache:    productCache,
		log:             log,
		productCacheTTL: ttl,
	}
}

// liveProduct resolves a product, cache first, catalog on miss.
func (s *cartService) liveProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	product, cacheErr := s.productCache.Get(ctx, productID)
	if cacheErr == nil && product != nil {
		s.log.Debugf("Product %d found in cache", productID)
		return product, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, repository.ErrNotFound) {
		s.log.Warnf("Error getting product %d from cache: %v. Fetching from catalog.", productID, cacheErr)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog lookup for product %d failed: %w", productID, err)
	}
	if errSet := s.productCache.Set(ctx, product, s.productCacheTTL); errSet != nil {
		s.log.Warnf("Failed to cache product %d: %v", productID, errSet)
	}
	return product, nil
}

func (s *cartService) view(store *CartStore) *CartView {
	return &CartView{
		Lines:      store.Lines(),
		Total:      store.Total(),
		TotalItems: store.TotalItems(),
	}
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, productID int64, variantID *int64, customization *entity.Customization) (*CartView, error) {
	s.log.Infof("Adding item to cart: Session=%s, ProductID=%d", sessionID, productID)

	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		s.log.Errorf("Failed to resolve product %d for add: %v", productID, err)
		return nil, err
	}

	variant, ok := product.VariantSnapshot(variantID)
	if !ok {
		s.log.Warnf("Variant %d not found on product %d", *variantID, productID)
		return nil, ErrVariantNotFound
	}

	store := s.carts.Store(ctx, sessionID)

	// Stock ceiling: live stock minus what the cart already holds. The store
	// never checks this itself; an add that passes here is unconditional.
	inCart := store.QuantityOfProduct(productID)
	if product.Stock-inCart < 1 {
		s.log.Infof("Stock ceiling reached for product %d: stock=%d, in cart=%d", productID, product.Stock, inCart)
		return nil, ErrStockExceeded
	}

	store.AddLine(product.Snapshot(), variant, customization)
	s.log.Infof("Item added to cart for session %s", sessionID)
	return s.view(store), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*CartView, error) {
	s.log.Infof("Updating line quantity: Session=%s, LineID=%s, Quantity=%d", sessionID, lineID, quantity)
	store := s.carts.Store(ctx, sessionID)
	store.SetQuantity(lineID, quantity)
	return s.view(store), nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID, lineID string) (*CartView, error) {
	s.log.Infof("Removing line from cart: Session=%s, LineID=%s", sessionID, lineID)
	store := s.carts.Store(ctx, sessionID)
	store.RemoveLine(lineID)
	return s.view(store), nil
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	store := s.carts.Store(ctx, sessionID)
	return s.view(store), nil
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	s.log.Infof("Clearing cart for session %s", sessionID)
	s.carts.Store(ctx, sessionID).Clear()
	return nil
}

// Availability reports how many more units of a product the session may add:
// live stock minus quantity already in the cart, floored at zero.
func (s *cartService) Availability(ctx context.Context, sessionID string, productID int64) (int, error) {
	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	inCart := s.carts.Store(ctx, sessionID).QuantityOfProduct(productID)
	available := product.Stock - inCart
	if available < 0 {
		available = 0
	}
	return available, nil
}
