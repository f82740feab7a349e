package voucher

import "errors"

var (
	// ErrUsageConflict means a concurrent redemption used the last allowed slot. The caller
	// should evaluate again before retrying.
	ErrUsageConflict       = errors.New("voucher usage limit reached by a concurrent redemption")
	ErrInvalidSubtotal     = errors.New("subtotal must not be negative")
	ErrCustomerRequired    = errors.New("redeeming a voucher needs a customer")
	ErrIdempotencyKey      = errors.New("redeeming a voucher needs an idempotency key")
	ErrIdempotencyKeyReuse = errors.New("idempotency key already used for a different redemption")
)
