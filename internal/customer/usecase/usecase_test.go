package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/customer/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
)

func TestPromotionIsVisibleToNextResolve(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewCustomerStore()
	store.Put(model.Customer{BaseModel: model.BaseModel{ID: "c1"}, CustomerClass: model.CustomerClassNormal})

	bus := events.NewBus()
	resolver := pricingcontext.NewResolver(store, pricingcontext.NewMemoryCache(time.Hour), time.Second, logger.NewNop())
	resolver.Subscribe(bus)
	uc := NewCustomerUseCase(store, bus, logger.NewNop())

	// Warm the cache with the retail context.
	if got := resolver.Resolve(ctx, "c1").Context.PricingMode; got != model.PricingModeB2C {
		t.Fatalf("before: mode = %s, want B2C", got)
	}

	c, err := uc.ChangeCustomerType(ctx, &dto.ChangeTypeInput{CustomerID: "c1", NewType: model.CustomerClassMerchant, ChangedBy: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if c.CustomerClass != model.CustomerClassMerchant {
		t.Errorf("class = %s, want merchant", c.CustomerClass)
	}

	res := resolver.Resolve(ctx, "c1")
	if res.Context.PricingMode != model.PricingModeB2B || !res.Context.ShowsMerchantPrice {
		t.Errorf("after: context = %+v, want B2B with merchant prices", res.Context)
	}
}

func TestChangeCustomerTypePublishesEvenWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewCustomerStore()
	store.Put(model.Customer{BaseModel: model.BaseModel{ID: "m1"}, CustomerClass: model.CustomerClassMerchant})

	bus := events.NewBus()
	var got []events.CustomerTypeChanged
	bus.OnCustomerTypeChanged(func(_ context.Context, evt events.CustomerTypeChanged) {
		got = append(got, evt)
	})
	uc := NewCustomerUseCase(store, bus, logger.NewNop())

	if _, err := uc.ChangeCustomerType(ctx, &dto.ChangeTypeInput{CustomerID: "m1", NewType: model.CustomerClassMerchant}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].NewType != model.CustomerClassMerchant {
		t.Errorf("events = %+v, want one merchant event", got)
	}
}

func TestChangeCustomerTypeErrors(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewCustomerStore()
	store.Put(model.Customer{BaseModel: model.BaseModel{ID: "c1"}, CustomerClass: model.CustomerClassNormal})
	uc := NewCustomerUseCase(store, events.NewBus(), logger.NewNop())

	cases := []struct {
		in   dto.ChangeTypeInput
		want error
	}{
		{dto.ChangeTypeInput{CustomerID: "c1", NewType: "wholesale"}, customer.ErrInvalidCustomerClass},
		{dto.ChangeTypeInput{CustomerID: "ghost", NewType: model.CustomerClassMerchant}, customer.ErrCustomerNotFound},
	}
	for _, tc := range cases {
		in := tc.in
		if _, err := uc.ChangeCustomerType(ctx, &in); !errors.Is(err, tc.want) {
			t.Errorf("ChangeCustomerType(%+v) err = %v, want %v", tc.in, err, tc.want)
		}
	}

	if _, err := uc.GetCustomer(ctx, "ghost"); !errors.Is(err, customer.ErrCustomerNotFound) {
		t.Errorf("GetCustomer err = %v", err)
	}
}
