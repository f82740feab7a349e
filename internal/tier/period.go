package tier

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

// PeriodPolicy places spend months on the store's operating calendar.
type PeriodPolicy struct {
	Location *time.Location
}

func NewPeriodPolicy(loc *time.Location) PeriodPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return PeriodPolicy{Location: loc}
}

// PeriodStart is midnight on the first day of t's month in the store timezone.
func (p PeriodPolicy) PeriodStart(t time.Time) time.Time {
	local := t.In(p.Location)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, p.Location)
}

func (p PeriodPolicy) NextPeriodStart(t time.Time) time.Time {
	return p.PeriodStart(t).AddDate(0, 1, 0)
}

// IsStale reports whether a customer's stored spend belongs to an earlier month than now.
func (p PeriodPolicy) IsStale(c *model.Customer, now time.Time) bool {
	return c.SpendPeriodStart.Before(p.PeriodStart(now))
}

// EffectiveSpend is the customer's spend for the month containing now.
func (p PeriodPolicy) EffectiveSpend(c *model.Customer, now time.Time) decimal.Decimal {
	if p.IsStale(c, now) {
		return decimal.Zero
	}
	return c.MonthlySpend
}
