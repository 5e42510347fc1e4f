package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
)

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) GetProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, productID int64) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockProductCache) Delete(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newTestCartService(catalog repository.ProductCatalog, cache repository.ProductCache) (CartService, *CartManager) {
	manager := NewCartManager(newMemStorageFactory(), logger.NewNop())
	svc := NewCartService(manager, catalog, cache, logger.NewNop(), CartServiceConfig{ProductCacheTTL: time.Minute})
	return svc, manager
}

func catalogProduct(id int64, stock int) *entity.Product {
	return &entity.Product{
		ProductID: id,
		Name:      "Taza personalizada",
		Stock:     stock,
		BasePrice: 8.0,
		Variants: []entity.ProductVariant{
			{VariantID: 100, Name: "Grande", Price: 12.0},
		},
	}
}

func TestCartService_AddItem_Success(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 5)
	mockCache.On("Get", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound).Once()
	mockCatalog.On("GetProduct", mock.Anything, int64(1)).Return(product, nil).Once()
	mockCache.On("Set", mock.Anything, product, time.Minute).Return(nil).Once()

	variantID := int64(100)
	cart, err := svc.AddItem(context.Background(), "s1", 1, &variantID, nil)

	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(1), cart.Lines[0].Product.ProductID)
	assert.NotNil(t, cart.Lines[0].Variant.VariantID)
	assert.Equal(t, int64(100), *cart.Lines[0].Variant.VariantID)
	assert.Equal(t, 12.0, cart.Total)
	assert.Equal(t, 1, cart.TotalItems)

	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCartService_AddItem_BaseProductPricingWhenNoVariant(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 5)
	mockCache.On("Get", mock.Anything, int64(1)).Return(product, nil).Once()

	cart, err := svc.AddItem(context.Background(), "s1", 1, nil, nil)

	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Nil(t, cart.Lines[0].Variant.VariantID)
	assert.Equal(t, 8.0, cart.Total)

	mockCache.AssertExpectations(t)
}

func TestCartService_AddItem_StockCeiling(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 2)
	mockCache.On("Get", mock.Anything, int64(1)).Return(product, nil).Times(3)

	_, err := svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)

	cart, err := svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Nil(t, cart)

	// The blocked add must not have reached the store.
	view, _ := svc.GetCart(context.Background(), "s1")
	assert.Equal(t, 2, view.TotalItems)

	mockCache.AssertExpectations(t)
}

func TestCartService_AddItem_StockCeilingCountsAcrossVariants(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 2)
	mockCache.On("Get", mock.Anything, int64(1)).Return(product, nil).Times(3)

	variantID := int64(100)
	_, err := svc.AddItem(context.Background(), "s1", 1, &variantID, nil)
	assert.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)

	// Two variants of the same product share one ceiling.
	_, err = svc.AddItem(context.Background(), "s1", 1, &variantID, nil)
	assert.ErrorIs(t, err, ErrStockExceeded)

	mockCache.AssertExpectations(t)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	mockCache.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound).Once()
	mockCatalog.On("GetProduct", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound).Once()

	cart, err := svc.AddItem(context.Background(), "s1", 404, nil, nil)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, cart)

	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCartService_AddItem_VariantNotFound(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	mockCache.On("Get", mock.Anything, int64(1)).Return(catalogProduct(1, 5), nil).Once()

	badVariant := int64(999)
	cart, err := svc.AddItem(context.Background(), "s1", 1, &badVariant, nil)

	assert.ErrorIs(t, err, ErrVariantNotFound)
	assert.Nil(t, cart)
}

func TestCartService_AddItem_CacheErrorFallsThroughToCatalog(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 5)
	mockCache.On("Get", mock.Anything, int64(1)).Return(nil, assert.AnError).Once()
	mockCatalog.On("GetProduct", mock.Anything, int64(1)).Return(product, nil).Once()
	mockCache.On("Set", mock.Anything, product, time.Minute).Return(nil).Once()

	_, err := svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)

	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCartService_Availability(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	product := catalogProduct(1, 3)
	mockCache.On("Get", mock.Anything, int64(1)).Return(product, nil)

	available, err := svc.Availability(context.Background(), "s1", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, available)

	_, err = svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)

	available, err = svc.Availability(context.Background(), "s1", 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestCartService_Availability_FlooredAtZero(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, manager := newTestCartService(mockCatalog, mockCache)

	// Stale snapshot scenario: the cart holds more than current live stock.
	store := manager.Store(context.Background(), "s1")
	line := store.AddLine(testProduct(1, 10), testVariant(11, 2), nil)
	store.SetQuantity(line.ID, 10)

	product := catalogProduct(1, 4)
	mockCache.On("Get", mock.Anything, int64(1)).Return(product, nil).Once()

	available, err := svc.Availability(context.Background(), "s1", 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	mockCatalog := new(MockProductCatalog)
	mockCache := new(MockProductCache)
	svc, _ := newTestCartService(mockCatalog, mockCache)

	mockCache.On("Get", mock.Anything, int64(1)).Return(catalogProduct(1, 5), nil)

	cart, err := svc.AddItem(context.Background(), "s1", 1, nil, nil)
	assert.NoError(t, err)
	lineID := cart.Lines[0].ID

	cart, err = svc.UpdateQuantity(context.Background(), "s1", lineID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, cart.TotalItems)

	cart, err = svc.RemoveItem(context.Background(), "s1", lineID)
	assert.NoError(t, err)
	assert.Empty(t, cart.Lines)

	assert.NoError(t, svc.ClearCart(context.Background(), "s1"))
	view, _ := svc.GetCart(context.Background(), "s1")
	assert.Equal(t, 0.0, view.Total)
	assert.Equal(t, 0, view.TotalItems)
}
