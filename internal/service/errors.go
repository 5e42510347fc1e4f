package service

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found for product")
	ErrStockExceeded   = errors.New("requested quantity exceeds available stock")
	ErrEmptyCart       = errors.New("cannot place order with an empty cart")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotCancellable  = errors.New("order cannot be cancelled at its current status")
)
