package catalog

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type Repository interface {
	// GetProduct loads the product with its component links, variants and images.
	// It returns nil, nil when the product does not exist.
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
}
