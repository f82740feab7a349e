package dto

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type CustomerTier struct {
	CustomerID   string          `json:"customer_id"`
	MonthlySpend decimal.Decimal `json:"monthly_spend"`
	PeriodStart  time.Time       `json:"period_start"`
	Tier         *model.Tier     `json:"tier"` // nil = baseline benefits
	Override     bool            `json:"override"`
}

type RecomputeResult struct {
	CustomerID string                 `json:"customer_id"`
	From       *model.Tier            `json:"from"`
	To         *model.Tier            `json:"to"`
	Changed    bool                   `json:"changed"`
	Reason     model.TierChangeReason `json:"reason"`
	Spend      decimal.Decimal        `json:"monthly_spend"`
}

type CompletedOrderInput struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
	CompletedAt time.Time       `json:"completed_at"`
}

type OrderRecorded struct {
	Applied      bool             `json:"applied"` // false for a replayed order
	Tier         *RecomputeResult `json:"tier"`
	PointsEarned decimal.Decimal  `json:"points_earned"`
}

type AdjustSpendInput struct {
	CustomerID string          `json:"customer_id"`
	Delta      decimal.Decimal `json:"delta"`
	Note       string          `json:"note"`
	AdjustedBy string          `json:"adjusted_by"`
}

type OverrideTierInput struct {
	CustomerID string `json:"customer_id"`
	TierID     string `json:"tier_id"` // empty clears the override
	AdjustedBy string `json:"adjusted_by"`
}

type ResetSummary struct {
	PeriodStart time.Time `json:"period_start"`
	Reset       int       `json:"reset"`
	Downgraded  int       `json:"downgraded"`
	Failed      int       `json:"failed"`
}
