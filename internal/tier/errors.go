package tier

import "errors"

var (
	ErrDuplicateLevel = errors.New("more than one active tier configured for a level")
	ErrTierNotFound   = errors.New("tier not found or inactive")
	ErrInvalidOrder   = errors.New("completed order needs an order id, a customer and a non-negative total")
)
