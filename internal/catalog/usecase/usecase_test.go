package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mirror() model.Product {
	merchant := dec("8")
	red := model.ComponentVariant{
		BaseModel: model.BaseModel{ID: "red"}, ComponentType: "Color", Name: "Red",
		SellingPrice: dec("10"), MerchantPrice: &merchant, StockQuantity: 3, IsActive: true,
	}
	blue := model.ComponentVariant{
		BaseModel: model.BaseModel{ID: "blue"}, ComponentType: "Color", Name: "Blue",
		SellingPrice: dec("15"), StockQuantity: 0, IsActive: true,
	}
	return model.Product{
		BaseModel: model.BaseModel{ID: "P"},
		SKU:       "MIR-01",
		Name:      "Side mirror",
		IsActive:  true,
		Components: []model.ProductComponent{
			{ProductID: "P", VariantID: "red", IsRequired: true, DisplayOrder: 1, Variant: red},
			{ProductID: "P", VariantID: "blue", IsRequired: true, DisplayOrder: 2, Variant: blue},
		},
	}
}

func newUseCase(t *testing.T) (catalog.UseCase, *memstore.CatalogStore) {
	t.Helper()
	products := memstore.NewCatalogStore()
	products.Put(mirror())
	customers := memstore.NewCustomerStore()
	customers.Put(model.Customer{BaseModel: model.BaseModel{ID: "m1"}, CustomerClass: model.CustomerClassMerchant})
	resolver := pricingcontext.NewResolver(customers, pricingcontext.NewMemoryCache(time.Hour), time.Second, logger.NewNop())
	return NewCatalogUseCase(products, resolver, nil, 0, logger.NewNop()), products
}

func TestGetConfiguratorUsesCustomerPriceColumn(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	retail, err := uc.GetConfigurator(ctx, "P", "")
	if err != nil {
		t.Fatal(err)
	}
	if retail.DefaultSelection["Color"] != "red" {
		t.Errorf("default = %v", retail.DefaultSelection)
	}
	if !retail.Quote.TotalPrice.Decimal.Equal(dec("10")) || retail.Quote.AvailableStock != 3 {
		t.Errorf("retail quote = %+v", retail.Quote)
	}

	wholesale, err := uc.GetConfigurator(ctx, "P", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if wholesale.Pricing.PricingMode != model.PricingModeB2B || !wholesale.Quote.TotalPrice.Decimal.Equal(dec("8")) {
		t.Errorf("wholesale = %+v %+v", wholesale.Pricing, wholesale.Quote)
	}
	if !wholesale.Groups[0].Options[1].Disabled {
		t.Error("out of stock option should be disabled")
	}
}

func TestQuoteConfiguration(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	res, err := uc.QuoteConfiguration(ctx, "P", "", configurator.Selection{"Color": "blue"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Quote.TotalPrice.Decimal.Equal(dec("15")) || res.Quote.AvailableStock != 0 {
		t.Errorf("quote = %+v", res.Quote)
	}

	store.SetStock("blue", 5)
	res, err = uc.QuoteConfiguration(ctx, "P", "", configurator.Selection{"Color": "blue"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Quote.AvailableStock != 5 {
		t.Errorf("stock after restock = %d", res.Quote.AvailableStock)
	}
}

func TestQuoteConfigurationErrors(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	inactive := mirror()
	inactive.ID = "old"
	inactive.IsActive = false
	store.Put(inactive)

	cases := []struct {
		name      string
		productID string
		sel       configurator.Selection
		want      error
	}{
		{"missing product", "nope", configurator.Selection{}, catalog.ErrProductNotFound},
		{"inactive product", "old", configurator.Selection{}, catalog.ErrProductInactive},
		{"unknown variant", "P", configurator.Selection{"Color": "green"}, configurator.ErrUnknownVariant},
		{"unknown type", "P", configurator.Selection{"Size": "red"}, configurator.ErrUnknownComponentType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := uc.QuoteConfiguration(ctx, c.productID, "", c.sel); !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestListProductsFiltersByFitment(t *testing.T) {
	uc, store := newUseCase(t)
	from, to := 2015, 2019
	old := mirror()
	old.ID, old.Name, old.YearFrom, old.YearTo = "P2", "Older mirror", &from, &to
	store.Put(old)

	products, total, err := uc.ListProducts(context.Background(), &dto.ProductFilters{Year: 2022})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || products[0].ID != "P" {
		t.Errorf("products = %+v", products)
	}
}

func TestGetVariant(t *testing.T) {
	uc, _ := newUseCase(t)
	v, err := uc.GetVariant(context.Background(), "blue")
	if err != nil || v.Name != "Blue" {
		t.Fatalf("GetVariant = %+v, %v", v, err)
	}
	if _, err := uc.GetVariant(context.Background(), "nope"); !errors.Is(err, catalog.ErrVariantNotFound) {
		t.Errorf("err = %v", err)
	}
}
