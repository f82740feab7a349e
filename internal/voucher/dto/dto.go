package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type EvaluateInput struct {
	Code       string          `json:"code"`
	CustomerID string          `json:"customer_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	// CustomerClass skips the pricing context lookup when the caller already resolved it.
	CustomerClass model.CustomerClass `json:"customer_class,omitempty"`
}

// Evaluation is the outcome of checking a code; Reason is empty when Valid.
type Evaluation struct {
	Code           string              `json:"code"`
	VoucherID      string              `json:"voucher_id,omitempty"`
	Valid          bool                `json:"valid"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Reason         model.VoucherReason `json:"reason,omitempty"`
	// MinPurchase is set for MINIMUM_PURCHASE_NOT_MET so the message can name it.
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
}

type RedeemInput struct {
	Code           string              `json:"code"`
	CustomerID     string              `json:"customer_id"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	IdempotencyKey string              `json:"idempotency_key"`
	OrderID        string              `json:"order_id"`
	CustomerClass  model.CustomerClass `json:"customer_class,omitempty"`
}

type RedeemResult struct {
	// Applied is false when the evaluation failed; nothing was counted then.
	Applied    bool                     `json:"applied"`
	Replayed   bool                     `json:"replayed"`
	Evaluation *Evaluation              `json:"evaluation"`
	Redemption *model.VoucherRedemption `json:"redemption,omitempty"`
}
