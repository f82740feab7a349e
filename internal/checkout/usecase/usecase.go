package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/checkout"
	"github.com/fekuna/omnipos-pricing-service/internal/checkout/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	tierdto "github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	voucherdto "github.com/fekuna/omnipos-pricing-service/internal/voucher/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type checkoutUseCase struct {
	pricing  catalog.ContextResolver
	catalog  catalog.UseCase
	vouchers voucher.UseCase
	tiers    tier.UseCase
	logger   logger.ZapLogger
}

func NewCheckoutUseCase(
	pricing catalog.ContextResolver,
	products catalog.UseCase,
	vouchers voucher.UseCase,
	tiers tier.UseCase,
	log logger.ZapLogger,
) checkout.UseCase {
	return &checkoutUseCase{
		pricing:  pricing,
		catalog:  products,
		vouchers: vouchers,
		tiers:    tiers,
		logger:   log,
	}
}

func (uc *checkoutUseCase) Quote(ctx context.Context, input *dto.QuoteInput) (*dto.Quote, error) {
	return uc.quote(ctx, input, false)
}

// quote builds the cart price in a fixed order: lines, subtotal, voucher, tier discount on what
// the voucher left, shipping. With strict set an unknown customer is an error instead of a
// customer without tier.
func (uc *checkoutUseCase) quote(ctx context.Context, input *dto.QuoteInput, strict bool) (*dto.Quote, error) {
	if len(input.Lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}

	// 1. Pricing context
	res := uc.pricing.Resolve(ctx, input.CustomerID)
	q := &dto.Quote{
		Pricing:         res.Context,
		PricingDegraded: res.Degraded,
		Purchasable:     true,
		Subtotal:        decimal.Zero,
	}

	// 2. Lines
	for i, in := range input.Lines {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: %w", i, checkout.ErrInvalidQuantity)
		}
		lq, err := uc.catalog.QuoteFor(ctx, in.ProductID, in.Selection, res.Context)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}

		line := dto.Line{ProductID: in.ProductID, Quantity: in.Quantity, Quote: lq.Quote}
		switch {
		case !lq.Quote.Complete:
			q.Purchasable = false
			q.Issues = append(q.Issues, dto.Issue{Line: i, ProductID: in.ProductID, MessageID: "configuration.incomplete", Groups: lq.Quote.MissingGroups})
		default:
			total := model.Money(lq.Quote.TotalPrice.Decimal.Mul(decimal.NewFromInt(int64(in.Quantity))))
			line.LineTotal = decimal.NewNullDecimal(total)
			q.Subtotal = q.Subtotal.Add(total)
			if lq.Quote.AvailableStock < in.Quantity {
				line.InsufficientStock = true
				q.Purchasable = false
				q.Issues = append(q.Issues, dto.Issue{Line: i, ProductID: in.ProductID, MessageID: "configuration.out_of_stock"})
			}
		}
		q.Lines = append(q.Lines, line)
	}
	q.Subtotal = model.Money(q.Subtotal)

	// 3. Voucher
	if input.VoucherCode != "" {
		eval, err := uc.vouchers.Evaluate(ctx, &voucherdto.EvaluateInput{
			Code:          input.VoucherCode,
			CustomerID:    input.CustomerID,
			Subtotal:      q.Subtotal,
			CustomerClass: res.Context.CustomerClass,
		})
		if err != nil {
			return nil, err
		}
		q.Voucher = eval
	}

	// 4. Tier
	if input.CustomerID != "" {
		ct, err := uc.tiers.GetCustomerTier(ctx, input.CustomerID)
		switch {
		case errors.Is(err, customer.ErrCustomerNotFound) && !strict:
		case err != nil:
			return nil, err
		default:
			q.Tier = ct.Tier
		}
	} else if strict {
		return nil, checkout.ErrCustomerRequired
	}

	totals(q, input.ShippingFee)
	return q, nil
}

// totals fills the money fields that follow from the subtotal, voucher and tier.
func totals(q *dto.Quote, shippingFee decimal.Decimal) {
	q.VoucherDiscount = decimal.Zero
	if q.Voucher != nil && q.Voucher.Valid {
		q.VoucherDiscount = q.Voucher.DiscountAmount
	}
	afterVoucher := decimal.Max(q.Subtotal.Sub(q.VoucherDiscount), decimal.Zero)
	q.TierDiscount = tier.Discount(q.Tier, afterVoucher)
	q.OrderValue = model.Money(decimal.Max(afterVoucher.Sub(q.TierDiscount), decimal.Zero))

	q.ShippingFee = model.Money(decimal.Max(shippingFee, decimal.Zero))
	q.FreeShipping = false
	if q.Tier != nil && q.Tier.FreeShippingThreshold != nil && q.Subtotal.GreaterThanOrEqual(*q.Tier.FreeShippingThreshold) {
		q.FreeShipping = true
		q.ShippingFee = decimal.Zero
	}

	q.Total = model.Money(q.OrderValue.Add(q.ShippingFee))
	q.PointsPreview = tier.PointsFor(q.OrderValue, q.Tier)
}

func (uc *checkoutUseCase) Complete(ctx context.Context, input *dto.CompleteInput) (*dto.Completion, error) {
	if input.CustomerID == "" {
		return nil, checkout.ErrCustomerRequired
	}
	if input.OrderID == "" || input.IdempotencyKey == "" {
		return nil, checkout.ErrOrderRequired
	}

	// 1. Re-price
	q, err := uc.quote(ctx, &input.QuoteInput, true)
	if err != nil {
		return nil, err
	}
	if !q.Purchasable {
		return nil, checkout.ErrNotPurchasable
	}
	out := &dto.Completion{OrderID: input.OrderID, Quote: q}

	// 2. Voucher
	if input.VoucherCode != "" {
		// Redeem evaluates again and recognises a retried key before any limit check.
		red, err := uc.vouchers.Redeem(ctx, &voucherdto.RedeemInput{
			Code:           input.VoucherCode,
			CustomerID:     input.CustomerID,
			Subtotal:       q.Subtotal,
			IdempotencyKey: input.IdempotencyKey,
			OrderID:        input.OrderID,
			CustomerClass:  q.Pricing.CustomerClass,
		})
		if err != nil {
			return nil, err
		}
		if !red.Applied {
			return nil, fmt.Errorf("%w: %s", checkout.ErrVoucherNotAccepted, red.Evaluation.Reason)
		}
		out.Voucher = red
		// A replay keeps the discount granted the first time.
		q.Voucher = red.Evaluation
		totals(q, input.ShippingFee)
	}

	// 3. Loyalty
	rec, err := uc.tiers.RecordCompletedOrder(ctx, &tierdto.CompletedOrderInput{
		OrderID:    input.OrderID,
		CustomerID: input.CustomerID,
		Total:      q.OrderValue,
	})
	if err != nil {
		uc.logger.Error("order completed but loyalty booking failed",
			zap.String("order_id", input.OrderID),
			zap.String("customer_id", input.CustomerID),
			zap.Error(err),
		)
		return nil, err
	}
	out.Order = rec

	uc.logger.Info("checkout completed",
		zap.String("order_id", input.OrderID),
		zap.String("customer_id", input.CustomerID),
		zap.String("total", q.Total.String()),
		zap.Bool("replayed", !rec.Applied),
	)
	return out, nil
}
