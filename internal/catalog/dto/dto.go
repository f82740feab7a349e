package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type ProductFilters struct {
	IsActive    *bool
	IsFeatured  *bool
	Year        int    // Vehicle model year, 0 = any
	SearchQuery string // For name and sku search
	Page        int
	PageSize    int
}

type Configurator struct {
	Product          *model.Product         `json:"product"`
	Pricing          model.PricingContext   `json:"pricing"`
	PricingDegraded  bool                   `json:"pricing_degraded"`
	Groups           []configurator.Group   `json:"groups"`
	DefaultSelection configurator.Selection `json:"default_selection"`
	Quote            *configurator.Quote    `json:"quote"`
}

type QuoteResult struct {
	ProductID       string                 `json:"product_id"`
	Pricing         model.PricingContext   `json:"pricing"`
	PricingDegraded bool                   `json:"pricing_degraded"`
	Selection       configurator.Selection `json:"selection"`
	Quote           *configurator.Quote    `json:"quote"`
}
