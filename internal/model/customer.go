package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerClass string

const (
	CustomerClassNormal   CustomerClass = "normal"
	CustomerClassMerchant CustomerClass = "merchant"
)

func (c CustomerClass) Valid() bool {
	return c == CustomerClassNormal || c == CustomerClassMerchant
}

type Customer struct {
	BaseModel
	CustomerClass    CustomerClass   `db:"customer_class" json:"customer_class"`
	MonthlySpend     decimal.Decimal `db:"monthly_spend" json:"monthly_spend"`
	SpendPeriodStart time.Time       `db:"spend_period_start" json:"spend_period_start"`
	TierID           *string         `db:"tier_id" json:"tier_id"`
	TierOverride     bool            `db:"tier_override" json:"tier_override"` // Sticky admin override until the next monthly reset
}

// CompletedOrder is the spend event recorded once per order.
type CompletedOrder struct {
	OrderID     string          `db:"order_id" json:"order_id"`
	CustomerID  string          `db:"customer_id" json:"customer_id"`
	Total       decimal.Decimal `db:"total" json:"total"`
	CompletedAt time.Time       `db:"completed_at" json:"completed_at"`
}
