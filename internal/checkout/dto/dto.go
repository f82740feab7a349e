package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	tierdto "github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	voucherdto "github.com/fekuna/omnipos-pricing-service/internal/voucher/dto"
	"github.com/shopspring/decimal"
)

type LineInput struct {
	ProductID string                 `json:"product_id"`
	Selection configurator.Selection `json:"selection"`
	Quantity  int                    `json:"quantity"`
}

type QuoteInput struct {
	CustomerID  string          `json:"customer_id"`
	Lines       []LineInput     `json:"lines"`
	VoucherCode string          `json:"voucher_code"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
}

type CompleteInput struct {
	QuoteInput
	OrderID        string `json:"order_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Issue is a problem that keeps a cart from being purchasable. MessageID is an i18n key.
type Issue struct {
	Line      int      `json:"line"`
	ProductID string   `json:"product_id"`
	MessageID string   `json:"message_id"`
	Groups    []string `json:"groups,omitempty"`
}

type Line struct {
	ProductID         string              `json:"product_id"`
	Quantity          int                 `json:"quantity"`
	Quote             *configurator.Quote `json:"quote"`
	LineTotal         decimal.NullDecimal `json:"line_total"`
	InsufficientStock bool                `json:"insufficient_stock"`
}

type Quote struct {
	Pricing         model.PricingContext   `json:"pricing"`
	PricingDegraded bool                   `json:"pricing_degraded"`
	Lines           []Line                 `json:"lines"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Voucher         *voucherdto.Evaluation `json:"voucher,omitempty"`
	VoucherDiscount decimal.Decimal        `json:"voucher_discount"`
	Tier            *model.Tier            `json:"tier,omitempty"`
	TierDiscount    decimal.Decimal        `json:"tier_discount"`
	ShippingFee     decimal.Decimal        `json:"shipping_fee"`
	FreeShipping    bool                   `json:"free_shipping"`
	// OrderValue is what counts toward monthly spend and points: merchandise after discounts.
	OrderValue    decimal.Decimal `json:"order_value"`
	Total         decimal.Decimal `json:"total"`
	PointsPreview decimal.Decimal `json:"points_preview"`
	Purchasable   bool            `json:"purchasable"`
	Issues        []Issue         `json:"issues,omitempty"`
}

type Completion struct {
	OrderID string                   `json:"order_id"`
	Quote   *Quote                   `json:"quote"`
	Voucher *voucherdto.RedeemResult `json:"voucher,omitempty"`
	Order   *tierdto.OrderRecorded   `json:"order"`
}
