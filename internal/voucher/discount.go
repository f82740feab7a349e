package voucher

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount computes what a valid voucher takes off subtotal. The result is always within
// [0, subtotal] and rounded to the money scale.
func Discount(v *model.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch v.DiscountType {
	case model.DiscountTypeFixedAmount:
		d = v.DiscountValue
	case model.DiscountTypePercentage:
		d = subtotal.Mul(v.DiscountValue).Div(hundred)
		if v.MaxDiscountAmount != nil {
			d = decimal.Min(d, *v.MaxDiscountAmount)
		}
	default:
		return decimal.Zero
	}

	d = decimal.Min(d, subtotal)
	d = decimal.Max(d, decimal.Zero)
	return model.Money(d)
}
