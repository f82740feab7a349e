package voucher

import (
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestDiscount(t *testing.T) {
	cases := []struct {
		name     string
		voucher  model.Voucher
		subtotal string
		want     string
	}{
		{"percentage capped", model.Voucher{DiscountType: model.DiscountTypePercentage, DiscountValue: dec("20"), MaxDiscountAmount: ptr(dec("50"))}, "400", "50"},
		{"percentage under cap", model.Voucher{DiscountType: model.DiscountTypePercentage, DiscountValue: dec("20"), MaxDiscountAmount: ptr(dec("50"))}, "100", "20"},
		{"percentage uncapped", model.Voucher{DiscountType: model.DiscountTypePercentage, DiscountValue: dec("12.5")}, "99.99", "12.5"},
		{"percentage over 100", model.Voucher{DiscountType: model.DiscountTypePercentage, DiscountValue: dec("150")}, "80", "80"},
		{"fixed", model.Voucher{DiscountType: model.DiscountTypeFixedAmount, DiscountValue: dec("25")}, "100", "25"},
		{"fixed clamped to subtotal", model.Voucher{DiscountType: model.DiscountTypeFixedAmount, DiscountValue: dec("25")}, "10", "10"},
		{"zero subtotal", model.Voucher{DiscountType: model.DiscountTypeFixedAmount, DiscountValue: dec("25")}, "0", "0"},
		{"cap below nominal", model.Voucher{DiscountType: model.DiscountTypePercentage, DiscountValue: dec("50"), MaxDiscountAmount: ptr(dec("0.01"))}, "1000", "0.01"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Discount(&c.voucher, dec(c.subtotal)); !got.Equal(dec(c.want)) {
				t.Errorf("Discount = %s, want %s", got, c.want)
			}
		})
	}
}

func TestDiscountStaysWithinSubtotal(t *testing.T) {
	caps := []*decimal.Decimal{nil, ptr(dec("0")), ptr(dec("5")), ptr(dec("1000"))}
	for _, typ := range []model.DiscountType{model.DiscountTypePercentage, model.DiscountTypeFixedAmount} {
		for value := int64(0); value <= 200; value += 7 {
			for _, maxDiscount := range caps {
				for subtotal := int64(0); subtotal <= 500; subtotal += 33 {
					v := &model.Voucher{DiscountType: typ, DiscountValue: decimal.NewFromInt(value), MaxDiscountAmount: maxDiscount}
					s := decimal.NewFromInt(subtotal).Add(dec("0.37"))
					got := Discount(v, s)
					if got.IsNegative() || got.GreaterThan(s) {
						t.Fatalf("%s value=%d cap=%v subtotal=%s: discount %s out of range", typ, value, maxDiscount, s, got)
					}
				}
			}
		}
	}
}
