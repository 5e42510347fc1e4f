package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderDetail_VariantAndProductAreMutuallyExclusive(t *testing.T) {
	withVariant := CartLine{
		Product:  ProductSnapshot{ProductID: 10},
		Variant:  VariantSnapshot{VariantID: int64Ptr(42), Price: floatPtr(3.5)},
		Quantity: 2,
	}
	detail := NewOrderDetail(withVariant)
	assert.NotNil(t, detail.VariantID)
	assert.Nil(t, detail.ProductID)
	assert.Equal(t, int64(42), *detail.VariantID)
	assert.Equal(t, 3.5, detail.Price)
	assert.Equal(t, 2, detail.Quantity)

	withoutVariant := CartLine{
		Product:  ProductSnapshot{ProductID: 10},
		Variant:  VariantSnapshot{VariantID: nil, Price: floatPtr(8)},
		Quantity: 1,
	}
	detail = NewOrderDetail(withoutVariant)
	assert.Nil(t, detail.VariantID)
	assert.NotNil(t, detail.ProductID)
	assert.Equal(t, int64(10), *detail.ProductID)
}

func TestNewOrder_Validation(t *testing.T) {
	details := []OrderDetail{{Quantity: 1, Price: 5}}
	addr := ShippingAddress{City: "Quito"}

	_, err := NewOrder("", "courier", "tarjeta", addr, details, 5)
	assert.Error(t, err)

	_, err = NewOrder("s1", "", "tarjeta", addr, details, 5)
	assert.Error(t, err)

	_, err = NewOrder("s1", "courier", "", addr, details, 5)
	assert.Error(t, err)

	_, err = NewOrder("s1", "courier", "tarjeta", addr, nil, 0)
	assert.Error(t, err)

	order, err := NewOrder("s1", "courier", "tarjeta", addr, details, 5)
	assert.NoError(t, err)
	assert.Equal(t, StatusCreated, order.Status)
	assert.Equal(t, 1, order.Version)
}

func TestOrder_StatusTransitions(t *testing.T) {
	order := &Order{Status: StatusCreated, Version: 1}

	assert.True(t, order.CanBeCancelled())
	assert.NoError(t, order.UpdateStatus(StatusProcessing))
	assert.Equal(t, 2, order.Version)

	assert.NoError(t, order.UpdateStatus(StatusShipped))
	assert.False(t, order.CanBeCancelled())

	err := order.UpdateStatus(StatusCancelled)
	assert.Error(t, err)
	assert.Equal(t, StatusShipped, order.Status)
}
