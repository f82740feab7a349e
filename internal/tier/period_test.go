package tier

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

func TestPeriodStartUsesStoreTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	p := NewPeriodPolicy(jakarta)

	// 18:30 UTC on Jan 31 is already Feb 1 in Jakarta.
	now := time.Date(2026, time.January, 31, 18, 30, 0, 0, time.UTC)
	got := p.PeriodStart(now)
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, jakarta)
	if !got.Equal(want) {
		t.Errorf("PeriodStart = %v, want %v", got, want)
	}
	if next := p.NextPeriodStart(now); !next.Equal(want.AddDate(0, 1, 0)) {
		t.Errorf("NextPeriodStart = %v", next)
	}
}

func TestEffectiveSpendIgnoresStaleMonth(t *testing.T) {
	p := NewPeriodPolicy(time.UTC)
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	c := &model.Customer{
		MonthlySpend:     decimal.NewFromInt(3000),
		SpendPeriodStart: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	if !p.IsStale(c, now) {
		t.Fatal("February spend should be stale in March")
	}
	if got := p.EffectiveSpend(c, now); !got.IsZero() {
		t.Errorf("EffectiveSpend = %s, want 0", got)
	}

	c.SpendPeriodStart = p.PeriodStart(now)
	if got := p.EffectiveSpend(c, now); !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("EffectiveSpend = %s, want 3000", got)
	}
}
