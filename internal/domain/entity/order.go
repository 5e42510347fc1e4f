package entity

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusCreated    OrderStatus = "CREADO"
	StatusProcessing OrderStatus = "PROCESANDO"
	StatusShipped    OrderStatus = "ENVIADO"
	StatusDelivered  OrderStatus = "ENTREGADO"
	StatusCancelled  OrderStatus = "CANCELADO"
)

// ShippingAddress mirrors the storefront's address shape on the wire.
type ShippingAddress struct {
	MainStreet string `json:"callePrincipal" bson:"calle_principal"`
	Avenue     string `json:"avenida" bson:"avenida"`
	City       string `json:"ciudad" bson:"ciudad"`
	Province   string `json:"provincia" bson:"provincia"`
	Country    string `json:"pais" bson:"pais"`
}

// OrderDetail is one checkout line. VariantID and ProductID are mutually
// exclusive: VariantID is set when the cart line's variant snapshot had one,
// otherwise ProductID carries the base product reference.
type OrderDetail struct {
	Quantity  int     `json:"cantidad" bson:"cantidad"`
	Price     float64 `json:"precio" bson:"precio"`
	VariantID *int64  `json:"varianteId,omitempty" bson:"variante_id,omitempty"`
	ProductID *int64  `json:"productoId,omitempty" bson:"producto_id,omitempty"`
}

// NewOrderDetail builds a checkout detail from a cart line.
func NewOrderDetail(line CartLine) OrderDetail {
	detail := OrderDetail{
		Quantity: line.Quantity,
		Price:    line.Variant.UnitPrice(),
	}
	if line.Variant.VariantID != nil {
		id := *line.Variant.VariantID
		detail.VariantID = &id
	} else {
		id := line.Product.ProductID
		detail.ProductID = &id
	}
	return detail
}

type Order struct {
	ID            string          `json:"id" bson:"_id,omitempty"`
	SessionID     string          `json:"-" bson:"session_id"`
	Transport     string          `json:"transporte" bson:"transporte"`
	PaymentMethod string          `json:"metodoPago" bson:"metodo_pago"`
	Total         float64         `json:"contenidoTotal" bson:"contenido_total"`
	Address       ShippingAddress `json:"direccion" bson:"direccion"`
	Details       []OrderDetail   `json:"detalles" bson:"detalles"`
	Status        OrderStatus     `json:"estado" bson:"status"`
	CreatedAt     time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" bson:"updated_at"`
	Version       int             `json:"-" bson:"version"`
}

func NewOrder(sessionID, transport, paymentMethod string, address ShippingAddress, details []OrderDetail, total float64) (*Order, error) {
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}
	if transport == "" {
		return nil, errors.New("transport cannot be empty")
	}
	if paymentMethod == "" {
		return nil, errors.New("payment method cannot be empty")
	}
	if len(details) == 0 {
		return nil, errors.New("order must contain at least one detail line")
	}

	now := time.Now().UTC()
	return &Order{
		SessionID:     sessionID,
		Transport:     transport,
		PaymentMethod: paymentMethod,
		Total:         total,
		Address:       address,
		Details:       details,
		Status:        StatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}, nil
}

func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case StatusCreated, StatusProcessing:
		return true
	default:
		return false
	}
}

func (o *Order) UpdateStatus(newStatus OrderStatus) error {
	if o.Status == newStatus {
		return nil
	}
	validTransitions := map[OrderStatus][]OrderStatus{
		StatusCreated:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {},
		StatusCancelled:  {},
	}
	allowed, ok := validTransitions[o.Status]
	if !ok {
		return fmt.Errorf("cannot transition from unknown status %s", o.Status)
	}
	for _, s := range allowed {
		if s == newStatus {
			o.Status = newStatus
			o.UpdatedAt = time.Now().UTC()
			o.Version++
			return nil
		}
	}
	return fmt.Errorf("invalid status transition from %s to %s", o.Status, newStatus)
}
