package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type voucherUseCase struct {
	repo    voucher.Repository
	pricing voucher.ContextResolver
	logger  logger.ZapLogger
	now     func() time.Time
}

type Option func(*voucherUseCase)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *voucherUseCase) { uc.now = now }
}

func NewVoucherUseCase(repo voucher.Repository, pricing voucher.ContextResolver, log logger.ZapLogger, opts ...Option) voucher.UseCase {
	uc := &voucherUseCase{
		repo:    repo,
		pricing: pricing,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *voucherUseCase) Evaluate(ctx context.Context, input *dto.EvaluateInput) (*dto.Evaluation, error) {
	eval, _, err := uc.evaluate(ctx, input)
	return eval, err
}

// evaluate runs the checks in order and stops at the first failure.
func (uc *voucherUseCase) evaluate(ctx context.Context, input *dto.EvaluateInput) (*dto.Evaluation, *model.Voucher, error) {
	if input.Subtotal.IsNegative() {
		return nil, nil, voucher.ErrInvalidSubtotal
	}
	code := model.NormalizeVoucherCode(input.Code)
	eval := &dto.Evaluation{Code: code}
	fail := func(r model.VoucherReason) (*dto.Evaluation, *model.Voucher, error) {
		eval.Reason = r
		return eval, nil, nil
	}

	// 1. Exists and active
	v, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("get voucher: %w", err)
	}
	if v == nil || !v.IsActive {
		return fail(model.VoucherNotFound)
	}
	eval.VoucherID = v.ID

	// 2. Validity window [from, until)
	now := uc.now()
	if now.Before(v.ValidFrom) {
		return fail(model.VoucherNotYetStarted)
	}
	if v.ValidUntil != nil && !now.Before(*v.ValidUntil) {
		return fail(model.VoucherExpired)
	}

	// 3. Customer class
	class := input.CustomerClass
	if class == "" {
		class = uc.pricing.Resolve(ctx, input.CustomerID).Context.CustomerClass
	}
	if !v.CustomerTypeRestriction.Allows(class) {
		return fail(model.VoucherCustomerTypeNotEligible)
	}

	// 4. Minimum purchase
	if input.Subtotal.LessThan(v.MinPurchaseAmount) {
		minPurchase := model.Money(v.MinPurchaseAmount)
		eval.MinPurchase = &minPurchase
		return fail(model.VoucherMinimumPurchaseNotMet)
	}

	// 5. Global usage
	if v.MaxUsageTotal != nil && v.CurrentUsageCount >= *v.MaxUsageTotal {
		return fail(model.VoucherGlobalLimitReached)
	}

	// 6. Per-customer usage
	used := 0
	if input.CustomerID != "" {
		used, err = uc.repo.GetUserUsage(ctx, v.ID, input.CustomerID)
		if err != nil {
			return nil, nil, fmt.Errorf("get voucher usage: %w", err)
		}
	}
	if used >= v.MaxUsagePerUser {
		return fail(model.VoucherPerUserLimitReached)
	}

	eval.Valid = true
	eval.DiscountAmount = voucher.Discount(v, input.Subtotal)
	return eval, v, nil
}

// Redeem counts one use of the voucher for this checkout attempt. Retrying with the same
// idempotency key returns the stored redemption without counting again.
func (uc *voucherUseCase) Redeem(ctx context.Context, input *dto.RedeemInput) (*dto.RedeemResult, error) {
	if input.CustomerID == "" {
		return nil, voucher.ErrCustomerRequired
	}
	if input.IdempotencyKey == "" {
		return nil, voucher.ErrIdempotencyKey
	}

	// 1. Replay
	existing, err := uc.repo.FindRedemption(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("find redemption: %w", err)
	}
	if existing != nil {
		return uc.replay(ctx, input, existing)
	}

	// 2. Evaluate
	eval, v, err := uc.evaluate(ctx, &dto.EvaluateInput{
		Code:          input.Code,
		CustomerID:    input.CustomerID,
		Subtotal:      input.Subtotal,
		CustomerClass: input.CustomerClass,
	})
	if err != nil {
		return nil, err
	}
	if !eval.Valid {
		return &dto.RedeemResult{Evaluation: eval}, nil
	}

	// 3. Count it
	var orderID *string
	if input.OrderID != "" {
		orderID = &input.OrderID
	}
	stored, replayed, err := uc.repo.IncrementUsage(ctx, &model.VoucherRedemption{
		ID:             uuid.New().String(),
		VoucherID:      v.ID,
		CustomerID:     input.CustomerID,
		IdempotencyKey: input.IdempotencyKey,
		OrderID:        orderID,
		Subtotal:       model.Money(input.Subtotal),
		DiscountAmount: eval.DiscountAmount,
		CreatedAt:      uc.now(),
	})
	if err != nil {
		uc.logger.Info("voucher redemption rejected",
			zap.String("voucher_id", v.ID),
			zap.String("customer_id", input.CustomerID),
			zap.Error(err),
		)
		return nil, err
	}
	if replayed {
		return uc.replay(ctx, input, stored)
	}

	uc.logger.Info("voucher redeemed",
		zap.String("voucher_id", v.ID),
		zap.String("customer_id", input.CustomerID),
		zap.String("discount", stored.DiscountAmount.String()),
	)
	return &dto.RedeemResult{Applied: true, Evaluation: eval, Redemption: stored}, nil
}

// replay returns a stored redemption for a retry. The key must come back with the same customer
// and the same voucher code it was first used with.
func (uc *voucherUseCase) replay(ctx context.Context, input *dto.RedeemInput, r *model.VoucherRedemption) (*dto.RedeemResult, error) {
	if r.CustomerID != input.CustomerID {
		return nil, voucher.ErrIdempotencyKeyReuse
	}
	code := model.NormalizeVoucherCode(input.Code)
	v, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	if v == nil || v.ID != r.VoucherID {
		return nil, voucher.ErrIdempotencyKeyReuse
	}
	return &dto.RedeemResult{
		Applied:  true,
		Replayed: true,
		Evaluation: &dto.Evaluation{
			Code:           code,
			VoucherID:      r.VoucherID,
			Valid:          true,
			DiscountAmount: r.DiscountAmount,
		},
		Redemption: r,
	}, nil
}
