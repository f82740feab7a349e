package handler

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc/rpctest"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	walletuc "github.com/fekuna/omnipos-pricing-service/internal/wallet/usecase"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newClient(t *testing.T) *rpctest.Client {
	t.Helper()
	policy := tier.NewPeriodPolicy(time.UTC)
	customers := memstore.NewCustomerStore()
	customers.Put(model.Customer{
		BaseModel:        model.BaseModel{ID: "n1"},
		CustomerClass:    model.CustomerClassNormal,
		MonthlySpend:     decimal.NewFromInt(900),
		SpendPeriodStart: policy.PeriodStart(time.Now()),
	})
	tiers := memstore.NewTierStore(
		model.Tier{BaseModel: model.BaseModel{ID: "gold"}, Name: "Gold", Level: 1, MinMonthlySpending: decimal.NewFromInt(5000), PointsMultiplier: decimal.NewFromInt(2), IsActive: true},
		model.Tier{BaseModel: model.BaseModel{ID: "silver"}, Name: "Silver", Level: 2, MinMonthlySpending: decimal.NewFromInt(1000), PointsMultiplier: decimal.NewFromInt(1), IsActive: true},
	)
	w := walletuc.NewWalletUseCase(memstore.NewWalletStore(), wallet.NewMemoryLocker(), logger.NewNop())
	uc := usecase.NewTierUseCase(tiers, customers, w, events.NewBus(), policy, logger.NewNop())
	return rpctest.Serve(t, NewTierHandler(uc, logger.NewNop()).ServiceDesc())
}

func TestResolveTier(t *testing.T) {
	c := newClient(t)
	cases := []struct {
		spend string
		want  string
	}{
		{"3000", "silver"},
		{"5000", "gold"},
		{"999.99", ""},
	}
	for _, tc := range cases {
		resp, err := c.Call("ResolveTier", map[string]any{"monthly_spend": tc.spend})
		if err != nil {
			t.Fatal(err)
		}
		got := ""
		if s := resp.Fields["tier"].GetStructValue(); s != nil {
			got = s.Fields["id"].GetStringValue()
		}
		if got != tc.want {
			t.Errorf("ResolveTier(%s) = %q, want %q", tc.spend, got, tc.want)
		}
	}
}

func TestAdjustSpendPromotes(t *testing.T) {
	c := newClient(t)
	resp, err := c.Call("AdjustSpend", map[string]any{"customer_id": "n1", "delta": "150", "note": "missed order", "adjusted_by": "ops"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Fields["changed"].GetBoolValue() {
		t.Errorf("AdjustSpend = %v, want a tier change", resp)
	}
	if got := resp.Fields["to"].GetStructValue().Fields["id"].GetStringValue(); got != "silver" {
		t.Errorf("to = %q", got)
	}

	resp, err = c.Call("ListTierChanges", map[string]any{"customer_id": "n1"})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(resp.Fields["changes"].GetListValue().GetValues()); n != 1 {
		t.Errorf("changes = %d, want 1", n)
	}
}

func TestTierErrorCodes(t *testing.T) {
	c := newClient(t)
	cases := []struct {
		method string
		req    map[string]any
		want   codes.Code
	}{
		{"GetCustomerTier", map[string]any{"customer_id": "ghost"}, codes.NotFound},
		{"OverrideTier", map[string]any{"customer_id": "n1", "tier_id": "platinum"}, codes.NotFound},
		{"RecordCompletedOrder", map[string]any{"customer_id": "n1", "total": "10"}, codes.InvalidArgument},
		{"ResolveTier", map[string]any{"monthly_spend": "lots"}, codes.InvalidArgument},
	}
	for _, tc := range cases {
		_, err := c.Call(tc.method, tc.req)
		if status.Code(err) != tc.want {
			t.Errorf("%s code = %v, want %v", tc.method, status.Code(err), tc.want)
		}
	}
}
