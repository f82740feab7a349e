// Package configurator prices a configurable product from a component selection. Everything
// here is a pure function of (product, selection, pricing mode).
package configurator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownVariant       = errors.New("selected variant is not an active option of this product")
	ErrUnknownComponentType = errors.New("product has no such component type")
)

// Selection maps a component type to the chosen variant id.
type Selection map[string]string

type Option struct {
	Variant   model.ComponentVariant `json:"variant"`
	Price     decimal.Decimal        `json:"price"`
	IsDefault bool                   `json:"is_default"`
	// Disabled options are out of stock: listed, selectable, but not purchasable.
	Disabled bool `json:"disabled"`
}

type Group struct {
	ComponentType string   `json:"component_type"`
	Required      bool     `json:"required"`
	Options       []Option `json:"options"`
}

// Line is one selected variant in a quote.
type Line struct {
	ComponentType string          `json:"component_type"`
	VariantID     string          `json:"variant_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
}

type Quote struct {
	Complete      bool     `json:"complete"`
	MissingGroups []string `json:"missing_groups,omitempty"`
	// TotalPrice is null while the configuration is incomplete.
	TotalPrice     decimal.NullDecimal `json:"total_price"`
	AvailableStock int                 `json:"available_stock"`
	Image          *model.Image        `json:"image"`
	Lines          []Line              `json:"lines"`
}

// Groups lists the product's component groups in display order: a group sorts by its
// lowest-ordered link, options by their own display order. Inactive variants are left out;
// out-of-stock ones stay, flagged Disabled.
func Groups(p *model.Product, mode model.PricingMode) []Group {
	byType := map[string]*Group{}
	var groups []*Group

	links := append([]model.ProductComponent(nil), p.Components...)
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].DisplayOrder != links[j].DisplayOrder {
			return links[i].DisplayOrder < links[j].DisplayOrder
		}
		return links[i].VariantID < links[j].VariantID
	})

	for _, link := range links {
		ct := link.Variant.ComponentType
		g, ok := byType[ct]
		if !ok {
			g = &Group{ComponentType: ct}
			byType[ct] = g
			groups = append(groups, g)
		}
		if link.IsRequired {
			g.Required = true
		}
		if !link.Variant.IsActive {
			continue
		}
		g.Options = append(g.Options, Option{
			Variant:   link.Variant,
			Price:     model.Money(link.Variant.PriceFor(mode)),
			IsDefault: link.IsDefault,
			Disabled:  !link.Variant.InStock(),
		})
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	return out
}

// DefaultSelection picks, per group, the first option flagged default, else the first option.
// Groups without active options are left unselected.
func DefaultSelection(p *model.Product) Selection {
	sel := Selection{}
	for _, g := range Groups(p, model.PricingModeB2C) {
		if len(g.Options) == 0 {
			continue
		}
		pick := g.Options[0]
		for _, o := range g.Options {
			if o.IsDefault {
				pick = o
				break
			}
		}
		sel[g.ComponentType] = pick.Variant.ID
	}
	return sel
}

// Calculate prices a selection. A selection that names a component type the product lacks,
// or a variant that is not an active option of its group, is a caller error. A missing
// required group is not: the quote comes back incomplete with no price.
func Calculate(p *model.Product, sel Selection, mode model.PricingMode) (*Quote, error) {
	groups := Groups(p, mode)
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ComponentType] = true
	}
	for ct := range sel {
		if !known[ct] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, ct)
		}
	}

	q := &Quote{Lines: []Line{}}
	var selected []model.ComponentVariant
	total := decimal.Zero

	for _, g := range groups {
		variantID := sel[g.ComponentType]
		if variantID == "" {
			if g.Required {
				q.MissingGroups = append(q.MissingGroups, g.ComponentType)
			}
			continue
		}
		opt, ok := findOption(g, variantID)
		if !ok {
			return nil, fmt.Errorf("%w: %s for %q", ErrUnknownVariant, variantID, g.ComponentType)
		}
		selected = append(selected, opt.Variant)
		total = total.Add(opt.Price)
		q.Lines = append(q.Lines, Line{
			ComponentType: g.ComponentType,
			VariantID:     opt.Variant.ID,
			Name:          opt.Variant.Name,
			Price:         opt.Price,
			Stock:         max(opt.Variant.StockQuantity, 0),
		})
	}

	q.Image = ResolveImage(p, selected)
	q.Complete = len(q.MissingGroups) == 0
	if !q.Complete {
		return q, nil
	}

	q.TotalPrice = decimal.NewNullDecimal(model.Money(total))
	q.AvailableStock = minStock(q.Lines)
	return q, nil
}

func findOption(g Group, variantID string) (Option, bool) {
	for _, o := range g.Options {
		if o.Variant.ID == variantID {
			return o, true
		}
	}
	return Option{}, false
}

// minStock is the number of complete configurations the scarcest part allows; 0 for none.
func minStock(lines []Line) int {
	if len(lines) == 0 {
		return 0
	}
	stock := lines[0].Stock
	for _, l := range lines[1:] {
		stock = min(stock, l.Stock)
	}
	return stock
}

// ResolveImage walks the fallback chain: a selected variant's primary image, then any
// selected variant's first image, then the product's primary image.
func ResolveImage(p *model.Product, selected []model.ComponentVariant) *model.Image {
	for _, v := range selected {
		for i := range v.Images {
			if v.Images[i].IsPrimary {
				img := v.Images[i]
				return &img
			}
		}
	}
	for _, v := range selected {
		if img := firstImage(v.Images); img != nil {
			return img
		}
	}
	if img := p.PrimaryImage(); img != nil {
		out := *img
		return &out
	}
	return nil
}

func firstImage(images []model.Image) *model.Image {
	if len(images) == 0 {
		return nil
	}
	first := images[0]
	for _, img := range images[1:] {
		if img.DisplayOrder < first.DisplayOrder {
			first = img
		}
	}
	return &first
}
