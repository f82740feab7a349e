package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart has no lines")
	ErrInvalidQuantity    = errors.New("line quantity must be positive")
	ErrCustomerRequired   = errors.New("completing a checkout needs a known customer")
	ErrOrderRequired      = errors.New("completing a checkout needs an order id and an idempotency key")
	ErrNotPurchasable     = errors.New("cart has incomplete or out of stock configurations")
	ErrVoucherNotAccepted = errors.New("voucher can no longer be applied")
)
