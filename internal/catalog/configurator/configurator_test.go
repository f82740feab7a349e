package configurator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func variant(id, ct, price string, stock int) model.ComponentVariant {
	return model.ComponentVariant{
		BaseModel:     model.BaseModel{ID: id},
		ComponentType: ct,
		Name:          id,
		SellingPrice:  dec(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func link(v model.ComponentVariant, order int, required, isDefault bool) model.ProductComponent {
	return model.ProductComponent{
		ProductID:    "P",
		VariantID:    v.ID,
		IsRequired:   required,
		IsDefault:    isDefault,
		DisplayOrder: order,
		Variant:      v,
	}
}

func colorProduct() *model.Product {
	return &model.Product{
		BaseModel: model.BaseModel{ID: "P"},
		Name:      "Side mirror",
		IsActive:  true,
		Components: []model.ProductComponent{
			link(variant("red", "Color", "10", 3), 1, true, false),
			link(variant("blue", "Color", "15", 0), 2, true, false),
		},
	}
}

func TestOutOfStockSelectionScenario(t *testing.T) {
	p := colorProduct()

	q, err := Calculate(p, Selection{"Color": "blue"}, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Complete || !q.TotalPrice.Valid || !q.TotalPrice.Decimal.Equal(dec("15")) {
		t.Errorf("total = %+v, want 15", q.TotalPrice)
	}
	if q.AvailableStock != 0 {
		t.Errorf("stock = %d, want 0", q.AvailableStock)
	}

	groups := Groups(p, model.PricingModeB2C)
	if len(groups) != 1 || len(groups[0].Options) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	blue := groups[0].Options[1]
	if blue.Variant.ID != "blue" || !blue.Disabled {
		t.Errorf("blue option = %+v, want listed and disabled", blue)
	}
	if groups[0].Options[0].Disabled {
		t.Error("red should be enabled")
	}
}

func TestCalculateSumsPricesAndTakesMinStock(t *testing.T) {
	p := &model.Product{
		BaseModel: model.BaseModel{ID: "P"},
		Components: []model.ProductComponent{
			link(variant("glass-clear", "Glass", "120.50", 7), 1, true, true),
			link(variant("housing-black", "Housing", "0", 4), 2, true, true),
			link(variant("motor", "Motor", "89.99", 12), 3, false, false),
		},
	}
	cases := []struct {
		name  string
		sel   Selection
		total string
		stock int
	}{
		{"required only", Selection{"Glass": "glass-clear", "Housing": "housing-black"}, "120.50", 4},
		{"with optional", Selection{"Glass": "glass-clear", "Housing": "housing-black", "Motor": "motor"}, "210.49", 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := Calculate(p, c.sel, model.PricingModeB2C)
			if err != nil {
				t.Fatal(err)
			}
			if !q.TotalPrice.Decimal.Equal(dec(c.total)) || q.AvailableStock != c.stock {
				t.Errorf("got total %s stock %d, want %s %d", q.TotalPrice.Decimal, q.AvailableStock, c.total, c.stock)
			}
		})
	}
}

func TestNegativeStockCountsAsZero(t *testing.T) {
	p := &model.Product{Components: []model.ProductComponent{
		link(variant("a", "A", "1", -2), 1, true, false),
	}}
	q, err := Calculate(p, Selection{"A": "a"}, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	if q.AvailableStock != 0 {
		t.Errorf("stock = %d, want 0", q.AvailableStock)
	}
}

func TestMissingRequiredGroupHasNoPrice(t *testing.T) {
	p := &model.Product{Components: []model.ProductComponent{
		link(variant("red", "Color", "10", 3), 1, true, false),
		link(variant("chrome", "Trim", "5", 3), 2, true, false),
	}}
	q, err := Calculate(p, Selection{"Color": "red"}, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	if q.Complete || q.TotalPrice.Valid {
		t.Errorf("incomplete quote priced: %+v", q)
	}
	if !reflect.DeepEqual(q.MissingGroups, []string{"Trim"}) {
		t.Errorf("missing = %v", q.MissingGroups)
	}
}

func TestEmptySelectionOnProductWithoutGroups(t *testing.T) {
	q, err := Calculate(&model.Product{}, Selection{}, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Complete || !q.TotalPrice.Decimal.IsZero() || q.AvailableStock != 0 {
		t.Errorf("quote = %+v, want complete, price 0, stock 0", q)
	}
}

func TestCalculateRejectsUnknownSelections(t *testing.T) {
	p := colorProduct()
	inactive := variant("green", "Color", "9", 9)
	inactive.IsActive = false
	p.Components = append(p.Components, link(inactive, 3, true, false))

	cases := []struct {
		name string
		sel  Selection
		want error
	}{
		{"unknown type", Selection{"Size": "red"}, ErrUnknownComponentType},
		{"unattached variant", Selection{"Color": "purple"}, ErrUnknownVariant},
		{"inactive variant", Selection{"Color": "green"}, ErrUnknownVariant},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Calculate(p, c.sel, model.PricingModeB2C); !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestMerchantPriceColumn(t *testing.T) {
	withMerchant := variant("red", "Color", "10", 3)
	mp := dec("7.5")
	withMerchant.MerchantPrice = &mp
	p := &model.Product{Components: []model.ProductComponent{
		link(withMerchant, 1, true, false),
		link(variant("chrome", "Trim", "5", 3), 2, false, false),
	}}
	sel := Selection{"Color": "red", "Trim": "chrome"}

	retail, err := Calculate(p, sel, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	wholesale, err := Calculate(p, sel, model.PricingModeB2B)
	if err != nil {
		t.Fatal(err)
	}
	if !retail.TotalPrice.Decimal.Equal(dec("15")) {
		t.Errorf("retail = %s", retail.TotalPrice.Decimal)
	}
	// Variants without a merchant price fall back to the selling price.
	if !wholesale.TotalPrice.Decimal.Equal(dec("12.5")) {
		t.Errorf("wholesale = %s", wholesale.TotalPrice.Decimal)
	}
}

func TestDefaultSelection(t *testing.T) {
	p := &model.Product{Components: []model.ProductComponent{
		link(variant("red", "Color", "10", 3), 2, true, false),
		link(variant("blue", "Color", "15", 0), 1, true, false),
		link(variant("s", "Size", "0", 3), 3, true, false),
		link(variant("m", "Size", "0", 3), 4, true, true),
		link(variant("l", "Size", "0", 3), 5, true, true),
	}}
	want := Selection{"Color": "blue", "Size": "m"}
	for i := 0; i < 3; i++ {
		if got := DefaultSelection(p); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: DefaultSelection = %v, want %v", i, got, want)
		}
	}
}

func TestResolveImageFallbacks(t *testing.T) {
	img := func(id string, primary bool, order int) model.Image {
		return model.Image{ID: id, URL: "https://cdn.example/" + id, IsPrimary: primary, DisplayOrder: order}
	}
	productPrimary := img("product-primary", true, 0)

	cases := []struct {
		name     string
		variants [][]model.Image
		product  []model.Image
		want     string
	}{
		{
			name:     "selected variant primary",
			variants: [][]model.Image{{img("a1", false, 0)}, {img("b1", false, 0), img("b-primary", true, 1)}},
			product:  []model.Image{productPrimary},
			want:     "b-primary",
		},
		{
			name:     "first image of a selected variant",
			variants: [][]model.Image{{}, {img("b2", false, 2), img("b1", false, 1)}},
			product:  []model.Image{productPrimary},
			want:     "b1",
		},
		{
			name:     "product primary",
			variants: [][]model.Image{{}, {}},
			product:  []model.Image{img("product-other", false, 0), productPrimary},
			want:     "product-primary",
		},
		{
			name:     "no image",
			variants: [][]model.Image{{}},
			product:  []model.Image{img("product-other", false, 0)},
			want:     "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &model.Product{Images: c.product}
			var selected []model.ComponentVariant
			for i, images := range c.variants {
				v := variant(string(rune('a'+i)), "T", "1", 1)
				v.Images = images
				selected = append(selected, v)
			}
			got := ResolveImage(p, selected)
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != c.want {
				t.Errorf("image = %q, want %q", gotID, c.want)
			}
		})
	}
}

func TestQuoteImageFollowsGroupOrder(t *testing.T) {
	first := variant("red", "Color", "10", 3)
	first.Images = []model.Image{{ID: "red-primary", IsPrimary: true}}
	second := variant("chrome", "Trim", "5", 3)
	second.Images = []model.Image{{ID: "chrome-primary", IsPrimary: true}}
	p := &model.Product{Components: []model.ProductComponent{
		link(second, 2, true, false),
		link(first, 1, true, false),
	}}
	q, err := Calculate(p, Selection{"Trim": "chrome", "Color": "red"}, model.PricingModeB2C)
	if err != nil {
		t.Fatal(err)
	}
	if q.Image == nil || q.Image.ID != "red-primary" {
		t.Errorf("image = %+v, want red-primary", q.Image)
	}
}
