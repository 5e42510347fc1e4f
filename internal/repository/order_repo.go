package repository

import (
	"context"

	"github.com/tiendalia/cart-service/internal/domain/entity"
)

type UpdateOrderStatusParams struct {
	OrderID string
	Status  entity.OrderStatus
	Version int
}

type ListOrdersParams struct {
	SessionID string
	Page      int
	PageSize  int
}

type ListOrdersResult struct {
	Orders     []entity.Order
	TotalCount int64
	TotalPages int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
	UpdateStatus(ctx context.Context, params UpdateOrderStatusParams) error
}
