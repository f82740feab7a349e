package handler

import (
	"testing"
	"time"

	customeruc "github.com/fekuna/omnipos-pricing-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc/rpctest"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newClient(t *testing.T) *rpctest.Client {
	t.Helper()
	store := memstore.NewCustomerStore()
	store.Put(model.Customer{BaseModel: model.BaseModel{ID: "m1"}, CustomerClass: model.CustomerClassMerchant})
	bus := events.NewBus()
	resolver := pricingcontext.NewResolver(store, pricingcontext.NewMemoryCache(time.Hour), time.Second, logger.NewNop())
	resolver.Subscribe(bus)
	uc := customeruc.NewCustomerUseCase(store, bus, logger.NewNop())
	return rpctest.Serve(t, NewCustomerHandler(uc, resolver, logger.NewNop()).ServiceDesc())
}

func pricingMode(t *testing.T, c *rpctest.Client, md ...string) string {
	t.Helper()
	resp, err := c.Call("ResolvePricingContext", map[string]any{}, md...)
	if err != nil {
		t.Fatal(err)
	}
	return resp.Fields["context"].GetStructValue().Fields["pricing_mode"].GetStringValue()
}

func TestChangeCustomerTypeRefreshesPricing(t *testing.T) {
	c := newClient(t)

	if got := pricingMode(t, c, "x-customer-id", "m1"); got != "B2B" {
		t.Fatalf("merchant mode = %q", got)
	}
	if got := pricingMode(t, c); got != "B2C" {
		t.Errorf("anonymous mode = %q", got)
	}

	resp, err := c.Call("ChangeCustomerType", map[string]any{"customer_id": "m1", "new_type": "normal", "changed_by": "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Fields["customer_class"].GetStringValue(); got != "normal" {
		t.Errorf("customer_class = %q", got)
	}
	if got := pricingMode(t, c, "x-customer-id", "m1"); got != "B2C" {
		t.Errorf("mode after demotion = %q, want B2C", got)
	}
}

func TestCustomerErrorCodes(t *testing.T) {
	c := newClient(t)
	if _, err := c.Call("GetCustomer", map[string]any{"customer_id": "ghost"}); status.Code(err) != codes.NotFound {
		t.Errorf("GetCustomer code = %v", status.Code(err))
	}
	_, err := c.Call("ChangeCustomerType", map[string]any{"customer_id": "m1", "new_type": "VIP"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("ChangeCustomerType code = %v", status.Code(err))
	}
}
