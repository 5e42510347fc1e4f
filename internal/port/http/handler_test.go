package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
	"github.com/tiendalia/cart-service/internal/service"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID string, productID int64, variantID *int64, customization *entity.Customization) (*service.CartView, error) {
	args := m.Called(ctx, sessionID, productID, variantID, customization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*service.CartView, error) {
	args := m.Called(ctx, sessionID, lineID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID, lineID string) (*service.CartView, error) {
	args := m.Called(ctx, sessionID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, sessionID string) (*service.CartView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCartService) Availability(ctx context.Context, sessionID string, productID int64) (int, error) {
	args := m.Called(ctx, sessionID, productID)
	return args.Int(0), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, params service.PlaceOrderParams) (*entity.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error) {
	args := m.Called(ctx, orderID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, sessionID string, page, pageSize int) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, sessionID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error) {
	args := m.Called(ctx, orderID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func newTestServer(cartSvc service.CartService, orderSvc service.OrderService) *httptest.Server {
	handler := NewHandler(cartSvc, orderSvc, logger.NewNop())
	return httptest.NewServer(NewRouter(handler))
}

func doRequest(t *testing.T, method, url string, sessionID string, body interface{}) *http.Response {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	assert.NoError(t, err)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return resp
}

func TestHandler_GetCart_MissingSessionHeader(t *testing.T) {
	srv := newTestServer(new(MockCartService), new(MockOrderService))
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/cart", "", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_AddItem_Success(t *testing.T) {
	mockCart := new(MockCartService)
	srv := newTestServer(mockCart, new(MockOrderService))
	defer srv.Close()

	view := &service.CartView{
		Lines:      []entity.CartLine{{ID: "l1", Quantity: 1}},
		Total:      9.5,
		TotalItems: 1,
	}
	mockCart.On("AddItem", mock.Anything, "s1", int64(7), (*int64)(nil), (*entity.Customization)(nil)).Return(view, nil).Once()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/cart/items", "s1", map[string]interface{}{"productoId": 7})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got service.CartView
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 9.5, got.Total)
	assert.Len(t, got.Lines, 1)

	mockCart.AssertExpectations(t)
}

func TestHandler_AddItem_StockExceededIsConflict(t *testing.T) {
	mockCart := new(MockCartService)
	srv := newTestServer(mockCart, new(MockOrderService))
	defer srv.Close()

	mockCart.On("AddItem", mock.Anything, "s1", int64(7), (*int64)(nil), (*entity.Customization)(nil)).
		Return(nil, service.ErrStockExceeded).Once()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/cart/items", "s1", map[string]interface{}{"productoId": 7})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body errorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestHandler_AddItem_MissingProductID(t *testing.T) {
	srv := newTestServer(new(MockCartService), new(MockOrderService))
	defer srv.Close()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/cart/items", "s1", map[string]interface{}{})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_UpdateQuantity_RejectsBelowOne(t *testing.T) {
	srv := newTestServer(new(MockCartService), new(MockOrderService))
	defer srv.Close()

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/cart/items/l1", "s1", map[string]interface{}{"cantidad": 0})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Availability(t *testing.T) {
	mockCart := new(MockCartService)
	srv := newTestServer(mockCart, new(MockOrderService))
	defer srv.Close()

	mockCart.On("Availability", mock.Anything, "s1", int64(7)).Return(3, nil).Once()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/products/7/availability", "s1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body availabilityResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(7), body.ProductID)
	assert.Equal(t, 3, body.Available)
}

func TestHandler_Checkout_Success(t *testing.T) {
	mockOrder := new(MockOrderService)
	srv := newTestServer(new(MockCartService), mockOrder)
	defer srv.Close()

	order := &entity.Order{ID: "order123", Status: entity.StatusCreated, Total: 12}
	mockOrder.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(p service.PlaceOrderParams) bool {
		return p.SessionID == "s1" && p.Transport == "courier" && p.PaymentMethod == "tarjeta"
	})).Return(order, nil).Once()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/checkout", "s1", map[string]interface{}{
		"transporte": "courier",
		"metodoPago": "tarjeta",
		"direccion": map[string]string{
			"callePrincipal": "Av. Amazonas",
			"ciudad":         "Quito",
		},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got entity.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "order123", got.ID)

	mockOrder.AssertExpectations(t)
}

func TestHandler_Checkout_EmptyCartIsUnprocessable(t *testing.T) {
	mockOrder := new(MockOrderService)
	srv := newTestServer(new(MockCartService), mockOrder)
	defer srv.Close()

	mockOrder.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, service.ErrEmptyCart).Once()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/checkout", "s1", map[string]interface{}{
		"transporte": "courier",
		"metodoPago": "tarjeta",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandler_Checkout_MissingFields(t *testing.T) {
	srv := newTestServer(new(MockCartService), new(MockOrderService))
	defer srv.Close()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/checkout", "s1", map[string]interface{}{
		"metodoPago": "tarjeta",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	mockOrder := new(MockOrderService)
	srv := newTestServer(new(MockCartService), mockOrder)
	defer srv.Close()

	mockOrder.On("GetOrder", mock.Anything, "missing", "s1").Return(nil, service.ErrOrderNotFound).Once()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/orders/missing", "s1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
