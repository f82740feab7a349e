package customer

import "errors"

var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrInvalidCustomerClass = errors.New("invalid customer class")
)
