package tier

import (
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

// Ladder is the set of active tiers ordered from best (level 1) to worst.
type Ladder struct {
	tiers []model.Tier
}

// NewLadder keeps the active tiers and rejects two active tiers on one level.
func NewLadder(tiers []model.Tier) (*Ladder, error) {
	active := make([]model.Tier, 0, len(tiers))
	seen := map[int]string{}
	for _, t := range tiers {
		if !t.IsActive {
			continue
		}
		if other, ok := seen[t.Level]; ok {
			return nil, fmt.Errorf("%w: level %d (%s, %s)", ErrDuplicateLevel, t.Level, other, t.ID)
		}
		seen[t.Level] = t.ID
		active = append(active, t)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Level < active[j].Level })
	return &Ladder{tiers: active}, nil
}

// Resolve returns the best tier whose threshold spend meets, or nil for baseline benefits.
func (l *Ladder) Resolve(spend decimal.Decimal) *model.Tier {
	for i := range l.tiers {
		if l.tiers[i].MinMonthlySpending.LessThanOrEqual(spend) {
			t := l.tiers[i]
			return &t
		}
	}
	return nil
}

func (l *Ladder) ByID(id string) *model.Tier {
	for i := range l.tiers {
		if l.tiers[i].ID == id {
			t := l.tiers[i]
			return &t
		}
	}
	return nil
}

func (l *Ladder) Tiers() []model.Tier {
	return append([]model.Tier(nil), l.tiers...)
}

// Better reports whether a is a better tier than b. Any tier beats no tier.
func Better(a, b *model.Tier) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Level < b.Level
}

func ID(t *model.Tier) *string {
	if t == nil {
		return nil
	}
	id := t.ID
	return &id
}

// PointsFor is floor(total * multiplier); customers without a tier earn at 1x.
func PointsFor(total decimal.Decimal, t *model.Tier) decimal.Decimal {
	multiplier := decimal.NewFromInt(1)
	if t != nil {
		multiplier = t.PointsMultiplier
	}
	return total.Mul(multiplier).Floor()
}

// Discount is the tier's percentage of amount, rounded to the money scale.
func Discount(t *model.Tier, amount decimal.Decimal) decimal.Decimal {
	if t == nil || !amount.IsPositive() {
		return decimal.Zero
	}
	return model.Money(amount.Mul(t.DiscountPercentage).Div(decimal.NewFromInt(100)))
}
