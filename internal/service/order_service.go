package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiendalia/cart-service/internal/adapter/nats"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/repository"
)

const (
	natsSubjectOrderCreated       = "order.created"
	natsSubjectOrderStatusUpdated = "order.status.updated"
)

type PlaceOrderParams struct {
	SessionID     string
	Transport     string
	PaymentMethod string
	Address       entity.ShippingAddress
	Email         string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error)
	ListOrders(ctx context.Context, sessionID string, page, pageSize int) (*repository.ListOrdersResult, error)
	CancelOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	carts        *CartManager
	msgPublisher nats.MessagePublisher
	confirmation ConfirmationSender
	log          logger.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	carts *CartManager,
	msgPublisher nats.MessagePublisher,
	confirmation ConfirmationSender,
	log logger.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		carts:        carts,
		msgPublisher: msgPublisher,
		confirmation: confirmation,
		log:          log,
	}
}

// PlaceOrder turns the session's cart into a persisted order. The cart is
// cleared only after the repository has acknowledged the write; any failure
// before that leaves the cart intact so the shopper can retry.
func (s *orderService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*entity.Order, error) {
	s.log.Infof("Placing order for session %s", params.SessionID)

	store := s.carts.Store(ctx, params.SessionID)
	lines := store.Lines()
	if len(lines) == 0 {
		s.log.Warnf("Session %s attempted to place an order with an empty cart", params.SessionID)
		return nil, ErrEmptyCart
	}

	details := make([]entity.OrderDetail, len(lines))
	for i, line := range lines {
		details[i] = entity.NewOrderDetail(line)
	}

	order, err := entity.NewOrder(params.SessionID, params.Transport, params.PaymentMethod, params.Address, details, store.Total())
	if err != nil {
		s.log.Errorf("Failed to build order for session %s: %v", params.SessionID, err)
		return nil, fmt.Errorf("failed to prepare order: %w", err)
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		s.log.Errorf("Failed to save order for session %s: %v", params.SessionID, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	order.ID = orderID

	store.Clear()

	if err := s.msgPublisher.Publish(ctx, natsSubjectOrderCreated, order); err != nil {
		s.log.Warnf("Failed to publish order created event for order %s: %v", orderID, err)
	}
	if params.Email != "" && s.confirmation != nil {
		if err := s.confirmation.SendOrderConfirmation(ctx, params.Email, order); err != nil {
			s.log.Warnf("Failed to send confirmation email for order %s: %v", orderID, err)
		}
	}

	s.log.Infof("Order %s placed successfully for session %s", orderID, params.SessionID)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		s.log.Errorf("Failed to get order %s: %v", orderID, err)
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	if order.SessionID != sessionID {
		s.log.Warnf("Session %s attempted to access order %s belonging to another session", sessionID, orderID)
		return nil, ErrAccessDenied
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, sessionID string, page, pageSize int) (*repository.ListOrdersResult, error) {
	result, err := s.orderRepo.List(ctx, repository.ListOrdersParams{
		SessionID: sessionID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		s.log.Errorf("Failed to list orders for session %s: %v", sessionID, err)
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return result, nil
}

func (s *orderService) CancelOrder(ctx context.Context, orderID, sessionID string) (*entity.Order, error) {
	s.log.Infof("Session %s attempting to cancel order %s", sessionID, orderID)

	order, err := s.GetOrder(ctx, orderID, sessionID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		s.log.Warnf("Order %s cannot be cancelled at status %s", orderID, order.Status)
		return nil, ErrNotCancellable
	}

	currentVersion := order.Version
	if err := order.UpdateStatus(entity.StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to set order status to cancelled: %w", err)
	}

	err = s.orderRepo.UpdateStatus(ctx, repository.UpdateOrderStatusParams{
		OrderID: order.ID,
		Status:  order.Status,
		Version: currentVersion,
	})
	if err != nil {
		s.log.Errorf("Failed to save cancelled status for order %s: %v", orderID, err)
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if errPub := s.msgPublisher.Publish(ctx, natsSubjectOrderStatusUpdated, order); errPub != nil {
		s.log.Warnf("Failed to publish order status updated event for order %s: %v", orderID, errPub)
	}

	s.log.Infof("Order %s cancelled by session %s", orderID, sessionID)
	return order, nil
}
