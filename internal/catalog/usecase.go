package catalog

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
)

// ContextResolver is the part of the pricing context resolver the catalog needs.
type ContextResolver interface {
	Resolve(ctx context.Context, customerID string) pricingcontext.Resolution
}

type UseCase interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	InvalidateProduct(ctx context.Context, id string) error

	GetConfigurator(ctx context.Context, productID, customerID string) (*dto.Configurator, error)
	QuoteConfiguration(ctx context.Context, productID, customerID string, selection configurator.Selection) (*dto.QuoteResult, error)
	// QuoteFor prices a selection under an already resolved pricing context.
	QuoteFor(ctx context.Context, productID string, selection configurator.Selection, pc model.PricingContext) (*dto.QuoteResult, error)
}
