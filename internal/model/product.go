package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	SKU        string             `db:"sku" json:"sku"`
	Name       string             `db:"name" json:"name"`
	IsActive   bool               `db:"is_active" json:"is_active"`
	IsFeatured bool               `db:"is_featured" json:"is_featured"`
	YearFrom   *int               `db:"year_from" json:"year_from"` // Nullable fitment range
	YearTo     *int               `db:"year_to" json:"year_to"`
	Images     []Image            `db:"-" json:"images"`
	Components []ProductComponent `db:"-" json:"components"` // Joined links, display order
}

// FitsYear reports whether the product fits a vehicle of the given model year. An open end of
// the range matches everything on that side.
func (p *Product) FitsYear(year int) bool {
	if p.YearFrom != nil && year < *p.YearFrom {
		return false
	}
	if p.YearTo != nil && year > *p.YearTo {
		return false
	}
	return true
}

// PrimaryImage returns the product's own primary image, if any.
func (p *Product) PrimaryImage() *Image {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

type ComponentVariant struct {
	BaseModel
	ComponentType string           `db:"component_type" json:"component_type"` // e.g. "color", "storage"
	Name          string           `db:"name" json:"name"`
	SellingPrice  decimal.Decimal  `db:"selling_price" json:"selling_price"`   // Additive delta, 0 = included
	MerchantPrice *decimal.Decimal `db:"merchant_price" json:"merchant_price"` // B2B column, nullable
	StockQuantity int              `db:"stock_quantity" json:"stock_quantity"`
	IsActive      bool             `db:"is_active" json:"is_active"`
	Images        []Image          `db:"-" json:"images"`
}

// PriceFor returns the price column that applies to the pricing mode.
func (v *ComponentVariant) PriceFor(mode PricingMode) decimal.Decimal {
	if mode == PricingModeB2B && v.MerchantPrice != nil {
		return *v.MerchantPrice
	}
	return v.SellingPrice
}

func (v *ComponentVariant) InStock() bool {
	return v.StockQuantity > 0
}

// ProductComponent links a variant to a product.
type ProductComponent struct {
	ProductID    string           `db:"product_id" json:"product_id"`
	VariantID    string           `db:"variant_id" json:"variant_id"`
	IsRequired   bool             `db:"is_required" json:"is_required"`
	IsDefault    bool             `db:"is_default" json:"is_default"`
	DisplayOrder int              `db:"display_order" json:"display_order"`
	Variant      ComponentVariant `db:"-" json:"variant"`
}

type Image struct {
	ID           string `db:"id" json:"id"`
	OwnerID      string `db:"owner_id" json:"owner_id"` // product or variant id
	URL          string `db:"url" json:"url"`
	IsPrimary    bool   `db:"is_primary" json:"is_primary"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}
