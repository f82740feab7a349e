package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

type CustomerTypeRestriction string

const (
	RestrictionAll      CustomerTypeRestriction = "ALL"
	RestrictionNormal   CustomerTypeRestriction = "NORMAL"
	RestrictionMerchant CustomerTypeRestriction = "MERCHANT"
)

// Allows reports whether a customer class passes the restriction.
func (r CustomerTypeRestriction) Allows(class CustomerClass) bool {
	switch r {
	case RestrictionAll, "":
		return true
	case RestrictionNormal:
		return class == CustomerClassNormal
	case RestrictionMerchant:
		return class == CustomerClassMerchant
	}
	return false
}

type Voucher struct {
	BaseModel
	Code                    string                  `db:"code" json:"code"`
	DiscountType            DiscountType            `db:"discount_type" json:"discount_type"`
	DiscountValue           decimal.Decimal         `db:"discount_value" json:"discount_value"`
	MaxDiscountAmount       *decimal.Decimal        `db:"max_discount_amount" json:"max_discount_amount"` // Caps percentage discounts
	MinPurchaseAmount       decimal.Decimal         `db:"min_purchase_amount" json:"min_purchase_amount"`
	MaxUsageTotal           *int                    `db:"max_usage_total" json:"max_usage_total"` // nil = unlimited
	MaxUsagePerUser         int                     `db:"max_usage_per_user" json:"max_usage_per_user"`
	CustomerTypeRestriction CustomerTypeRestriction `db:"customer_type_restriction" json:"customer_type_restriction"`
	ValidFrom               time.Time               `db:"valid_from" json:"valid_from"`
	ValidUntil              *time.Time              `db:"valid_until" json:"valid_until"` // nil = no expiry
	IsActive                bool                    `db:"is_active" json:"is_active"`
	CurrentUsageCount       int                     `db:"current_usage_count" json:"current_usage_count"`
}

// NormalizeVoucherCode makes codes compare case-insensitively.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// VoucherRedemption is written exactly once per checkout idempotency key.
type VoucherRedemption struct {
	ID             string          `db:"id" json:"id"`
	VoucherID      string          `db:"voucher_id" json:"voucher_id"`
	CustomerID     string          `db:"customer_id" json:"customer_id"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key"`
	OrderID        *string         `db:"order_id" json:"order_id"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// VoucherReason explains why a voucher cannot be applied. The zero value means it can.
type VoucherReason string

const (
	VoucherValid                   VoucherReason = ""
	VoucherNotFound                VoucherReason = "NOT_FOUND"
	VoucherNotYetStarted           VoucherReason = "NOT_YET_STARTED"
	VoucherExpired                 VoucherReason = "EXPIRED"
	VoucherCustomerTypeNotEligible VoucherReason = "CUSTOMER_TYPE_NOT_ELIGIBLE"
	VoucherMinimumPurchaseNotMet   VoucherReason = "MINIMUM_PURCHASE_NOT_MET"
	VoucherGlobalLimitReached      VoucherReason = "GLOBAL_LIMIT_REACHED"
	VoucherPerUserLimitReached     VoucherReason = "PER_USER_LIMIT_REACHED"
)

// MessageID is the i18n key shown to the customer.
func (r VoucherReason) MessageID() string {
	if r == VoucherValid {
		return "voucher.valid"
	}
	return "voucher." + strings.ToLower(string(r))
}
