package inventory

import "errors"

var (
	ErrVariantNotFound   = errors.New("component variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("stock quantity change is invalid")
	ErrInvalidMovement   = errors.New("unknown stock movement type")
)
