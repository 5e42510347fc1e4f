package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tiendalia/cart-service/internal/adapter/email"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
)

type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, to string, order *entity.Order) error
}

type confirmationSender struct {
	sender email.EmailSender
	log    logger.Logger
}

func NewConfirmationSender(sender email.EmailSender, log logger.Logger) ConfirmationSender {
	return &confirmationSender{sender: sender, log: log}
}

func (s *confirmationSender) SendOrderConfirmation(ctx context.Context, to string, order *entity.Order) error {
	subject := fmt.Sprintf("Confirmacion de pedido %s", order.ID)
	body := orderSummary(order)
	if err := s.sender.Send(ctx, []string{to}, subject, "", body); err != nil {
		return fmt.Errorf("failed to send order confirmation for order %s: %w", order.ID, err)
	}
	s.log.Infof("Order confirmation sent for order %s", order.ID)
	return nil
}

// orderSummary renders the plain-text body of the confirmation email.
func orderSummary(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido: %s\nTransporte: %s\nMetodo de pago: %s\nTotal: %.2f\n\nDetalles:\n",
		order.ID, order.Transport, order.PaymentMethod, order.Total)
	for i, d := range order.Details {
		ref := ""
		if d.VariantID != nil {
			ref = fmt.Sprintf("variante %d", *d.VariantID)
		} else if d.ProductID != nil {
			ref = fmt.Sprintf("producto %d", *d.ProductID)
		}
		fmt.Fprintf(&b, "  %d. %s x%d a %.2f\n", i+1, ref, d.Quantity, d.Price)
	}
	fmt.Fprintf(&b, "\nEnvio a: %s %s, %s, %s, %s\n",
		order.Address.MainStreet, order.Address.Avenue, order.Address.City, order.Address.Province, order.Address.Country)
	return b.String()
}
