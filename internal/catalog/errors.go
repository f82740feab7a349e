package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("component variant not found")
	ErrProductInactive = errors.New("product is not available for configuration")
)
