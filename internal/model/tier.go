package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tier struct {
	BaseModel
	Name                  string           `db:"name" json:"name"`
	Level                 int              `db:"level" json:"level"` // 1 = best
	MinMonthlySpending    decimal.Decimal  `db:"min_monthly_spending" json:"min_monthly_spending"`
	DiscountPercentage    decimal.Decimal  `db:"discount_percentage" json:"discount_percentage"`
	PointsMultiplier      decimal.Decimal  `db:"points_multiplier" json:"points_multiplier"`
	FreeShippingThreshold *decimal.Decimal `db:"free_shipping_threshold" json:"free_shipping_threshold"`
	PrioritySupport       bool             `db:"priority_support" json:"priority_support"`
	EarlyAccess           bool             `db:"early_access" json:"early_access"`
	IsActive              bool             `db:"is_active" json:"is_active"`
}

type TierChangeReason string

const (
	TierChangeOrderCompleted  TierChangeReason = "ORDER_COMPLETED"
	TierChangeAdminAdjustment TierChangeReason = "ADMIN_ADJUSTMENT"
	TierChangeAdminOverride   TierChangeReason = "ADMIN_OVERRIDE"
	TierChangeMonthlyReset    TierChangeReason = "MONTHLY_RESET"
)

// TierChange is the audit record written whenever a customer's tier is recomputed to a
// different value.
type TierChange struct {
	ID           string           `db:"id" json:"id"`
	CustomerID   string           `db:"customer_id" json:"customer_id"`
	FromTierID   *string          `db:"from_tier_id" json:"from_tier_id"`
	ToTierID     *string          `db:"to_tier_id" json:"to_tier_id"`
	Reason       TierChangeReason `db:"reason" json:"reason"`
	MonthlySpend decimal.Decimal  `db:"monthly_spend" json:"monthly_spend"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
