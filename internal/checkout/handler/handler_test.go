package handler

import (
	"testing"
	"time"

	cataloguc "github.com/fekuna/omnipos-pricing-service/internal/catalog/usecase"
	checkoutuc "github.com/fekuna/omnipos-pricing-service/internal/checkout/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc/rpctest"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	tieruc "github.com/fekuna/omnipos-pricing-service/internal/tier/usecase"
	voucheruc "github.com/fekuna/omnipos-pricing-service/internal/voucher/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	walletuc "github.com/fekuna/omnipos-pricing-service/internal/wallet/usecase"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newClient(t *testing.T) *rpctest.Client {
	t.Helper()
	log := logger.NewNop()
	policy := tier.NewPeriodPolicy(time.UTC)

	products := memstore.NewCatalogStore()
	products.Put(model.Product{
		BaseModel: model.BaseModel{ID: "P"},
		Name:      "Brake kit",
		IsActive:  true,
		Components: []model.ProductComponent{
			{ProductID: "P", VariantID: "pad", IsRequired: true, DisplayOrder: 1, Variant: model.ComponentVariant{
				BaseModel: model.BaseModel{ID: "pad"}, ComponentType: "Pad", Name: "Ceramic",
				SellingPrice: decimal.NewFromInt(80), StockQuantity: 5, IsActive: true,
			}},
		},
	})
	customers := memstore.NewCustomerStore()
	customers.Put(model.Customer{
		BaseModel:        model.BaseModel{ID: "n1"},
		CustomerClass:    model.CustomerClassNormal,
		SpendPeriodStart: policy.PeriodStart(time.Now()),
	})
	vouchers := memstore.NewVoucherStore()
	vouchers.Put(model.Voucher{
		BaseModel:               model.BaseModel{ID: "v1"},
		Code:                    "TENOFF",
		DiscountType:            model.DiscountTypeFixedAmount,
		DiscountValue:           decimal.NewFromInt(10),
		MinPurchaseAmount:       decimal.NewFromInt(100),
		MaxUsagePerUser:         1,
		CustomerTypeRestriction: model.RestrictionAll,
		ValidFrom:               time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:                true,
	})

	resolver := pricingcontext.NewResolver(customers, pricingcontext.NewMemoryCache(time.Minute), time.Second, log)
	catalog := cataloguc.NewCatalogUseCase(products, resolver, nil, 0, log)
	voucherUC := voucheruc.NewVoucherUseCase(vouchers, resolver, log)
	walletUC := walletuc.NewWalletUseCase(memstore.NewWalletStore(), wallet.NewMemoryLocker(), log)
	tierUC := tieruc.NewTierUseCase(memstore.NewTierStore(), customers, walletUC, events.NewBus(), policy, log)

	tr, err := i18n.New()
	if err != nil {
		t.Fatal(err)
	}
	uc := checkoutuc.NewCheckoutUseCase(resolver, catalog, voucherUC, tierUC, log)
	return rpctest.Serve(t, NewCheckoutHandler(uc, tr, log).ServiceDesc())
}

func cart(voucher string, qty int) map[string]any {
	return map[string]any{
		"lines": []any{
			map[string]any{"product_id": "P", "selection": map[string]any{"Pad": "pad"}, "quantity": qty},
		},
		"voucher_code": voucher,
		"shipping_fee": "12",
	}
}

func TestQuoteLocalizesVoucherOutcome(t *testing.T) {
	c := newClient(t)

	resp, err := c.Call("Quote", cart("TENOFF", 1), "x-customer-id", "n1")
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Fields["voucher_message"].GetStringValue(); got != "Add more items to reach the minimum purchase of 100.00." {
		t.Errorf("voucher_message = %q", got)
	}
	if got := resp.Fields["total"].GetStringValue(); got != "92" {
		t.Errorf("total = %q, want 92", got)
	}

	resp, err = c.Call("Quote", cart("TENOFF", 2), "x-customer-id", "n1")
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Fields["total"].GetStringValue(); got != "162" {
		t.Errorf("total = %q, want 162", got)
	}

	resp, err = c.Call("Quote", cart("", 6))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Fields["purchasable"].GetBoolValue() {
		t.Error("6 kits with 5 pads in stock should not be purchasable")
	}
	msgs := resp.Fields["messages"].GetListValue().GetValues()
	if len(msgs) != 1 || msgs[0].GetStringValue() != "This configuration is currently out of stock." {
		t.Errorf("messages = %v", msgs)
	}
}

func TestCompleteIsRetrySafe(t *testing.T) {
	c := newClient(t)
	req := cart("TENOFF", 2)
	req["order_id"] = "o-1"
	req["idempotency_key"] = "chk-o-1"

	for i := 0; i < 2; i++ {
		resp, err := c.Call("Complete", req, "x-customer-id", "n1")
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		order := resp.Fields["order"].GetStructValue()
		if applied := order.Fields["applied"].GetBoolValue(); applied != (i == 0) {
			t.Errorf("attempt %d applied = %v", i, applied)
		}
		if got := resp.Fields["quote"].GetStructValue().Fields["total"].GetStringValue(); got != "162" {
			t.Errorf("attempt %d total = %q", i, got)
		}
	}

	_, err := c.Call("Complete", cart("", 1), "x-customer-id", "n1")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("missing order id code = %v", status.Code(err))
	}
	_, err = c.Call("Complete", map[string]any{"lines": []any{}, "order_id": "o-2", "idempotency_key": "k"}, "x-customer-id", "n1")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("empty cart code = %v", status.Code(err))
	}
}
