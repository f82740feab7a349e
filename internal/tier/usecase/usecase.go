package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	walletdto "github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const resetBatchSize = 500

type tierUseCase struct {
	repo      tier.Repository
	customers customer.Repository
	wallet    wallet.UseCase
	bus       *events.Bus
	policy    tier.PeriodPolicy
	logger    logger.ZapLogger
	now       func() time.Time
}

type Option func(*tierUseCase)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *tierUseCase) { uc.now = now }
}

func NewTierUseCase(
	repo tier.Repository,
	customers customer.Repository,
	wallet wallet.UseCase,
	bus *events.Bus,
	policy tier.PeriodPolicy,
	log logger.ZapLogger,
	opts ...Option,
) tier.UseCase {
	uc := &tierUseCase{
		repo:      repo,
		customers: customers,
		wallet:    wallet,
		bus:       bus,
		policy:    policy,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *tierUseCase) ladder(ctx context.Context) (*tier.Ladder, error) {
	tiers, err := uc.repo.ListActiveTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tier.NewLadder(tiers)
}

func (uc *tierUseCase) customer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := uc.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, customer.ErrCustomerNotFound
	}
	return c, nil
}

func (uc *tierUseCase) ResolveTier(ctx context.Context, monthlySpend decimal.Decimal) (*model.Tier, error) {
	ladder, err := uc.ladder(ctx)
	if err != nil {
		return nil, err
	}
	return ladder.Resolve(monthlySpend), nil
}

// effective decides the tier a customer holds right now. A stale spend month counts as zero
// and drops any override; an override is kept unless spend alone earns something better.
func (uc *tierUseCase) effective(c *model.Customer, ladder *tier.Ladder, now time.Time) (decimal.Decimal, *model.Tier, bool) {
	if uc.policy.IsStale(c, now) {
		return decimal.Zero, ladder.Resolve(decimal.Zero), false
	}
	spend := c.MonthlySpend
	bySpend := ladder.Resolve(spend)
	if c.TierOverride && c.TierID != nil {
		if held := ladder.ByID(*c.TierID); held != nil && !tier.Better(bySpend, held) {
			return spend, held, true
		}
	}
	return spend, bySpend, false
}

func (uc *tierUseCase) GetCustomerTier(ctx context.Context, customerID string) (*dto.CustomerTier, error) {
	c, err := uc.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ladder, err := uc.ladder(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	spend, t, override := uc.effective(c, ladder, now)
	return &dto.CustomerTier{
		CustomerID:   c.ID,
		MonthlySpend: spend,
		PeriodStart:  uc.policy.PeriodStart(now),
		Tier:         t,
		Override:     override,
	}, nil
}

func (uc *tierUseCase) Recompute(ctx context.Context, customerID string, reason model.TierChangeReason) (*dto.RecomputeResult, error) {
	return uc.recomputeAt(ctx, customerID, reason, uc.now())
}

// recomputeAt evaluates the customer as of now, which also stamps any audit row.
func (uc *tierUseCase) recomputeAt(ctx context.Context, customerID string, reason model.TierChangeReason, now time.Time) (*dto.RecomputeResult, error) {
	c, err := uc.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ladder, err := uc.ladder(ctx)
	if err != nil {
		return nil, err
	}
	spend, target, override := uc.effective(c, ladder, now)
	return uc.apply(ctx, c, ladder, target, override, reason, spend, now)
}

func (uc *tierUseCase) apply(
	ctx context.Context,
	c *model.Customer,
	ladder *tier.Ladder,
	target *model.Tier,
	override bool,
	reason model.TierChangeReason,
	spend decimal.Decimal,
	now time.Time,
) (*dto.RecomputeResult, error) {
	var from *model.Tier
	if c.TierID != nil {
		from = ladder.ByID(*c.TierID)
		if from == nil {
			// Tier was deactivated since it was assigned.
			from = &model.Tier{BaseModel: model.BaseModel{ID: *c.TierID}}
		}
	}

	toID := tier.ID(target)
	changed := !sameID(c.TierID, toID)
	result := &dto.RecomputeResult{
		CustomerID: c.ID,
		From:       from,
		To:         target,
		Changed:    changed,
		Reason:     reason,
		Spend:      spend,
	}
	if !changed && c.TierOverride == override {
		return result, nil
	}

	var change *model.TierChange
	if changed {
		change = &model.TierChange{
			ID:           uuid.New().String(),
			CustomerID:   c.ID,
			FromTierID:   c.TierID,
			ToTierID:     toID,
			Reason:       reason,
			MonthlySpend: spend,
			CreatedAt:    now,
		}
	}
	if err := uc.customers.ApplyTier(ctx, c.ID, toID, override, change); err != nil {
		return nil, fmt.Errorf("apply tier: %w", err)
	}

	if changed {
		fields := []zap.Field{
			zap.String("customer_id", c.ID),
			zap.Stringp("from_tier_id", c.TierID),
			zap.Stringp("to_tier_id", toID),
			zap.String("reason", string(reason)),
			zap.String("monthly_spend", spend.String()),
		}
		if tier.Better(from, target) {
			uc.logger.Info("customer moved down a tier", fields...)
		} else {
			uc.logger.Info("customer tier changed", fields...)
		}
		uc.bus.PublishTierChanged(ctx, events.TierChanged{
			CustomerID: c.ID,
			FromTierID: c.TierID,
			ToTierID:   toID,
			Reason:     reason,
		})
	}

	return result, nil
}

// RecordCompletedOrder books an order's spend once per order id, recomputes the tier and
// earns points at the multiplier of the tier held when the order was placed. Replays are safe:
// spend is not added twice and the points entry is keyed by order.
func (uc *tierUseCase) RecordCompletedOrder(ctx context.Context, input *dto.CompletedOrderInput) (*dto.OrderRecorded, error) {
	if input.OrderID == "" || input.CustomerID == "" || input.Total.IsNegative() {
		return nil, tier.ErrInvalidOrder
	}

	c, err := uc.customer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	ladder, err := uc.ladder(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	_, held, _ := uc.effective(c, ladder, now)

	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = now
	}
	total := model.Money(input.Total)

	applied, err := uc.customers.RecordOrder(ctx, &model.CompletedOrder{
		OrderID:     input.OrderID,
		CustomerID:  c.ID,
		Total:       total,
		CompletedAt: completedAt,
	}, uc.policy.PeriodStart(now))
	if err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	if !applied {
		uc.logger.Info("completed order already recorded", zap.String("order_id", input.OrderID))
	}

	res, err := uc.Recompute(ctx, c.ID, model.TierChangeOrderCompleted)
	if err != nil {
		return nil, err
	}

	out := &dto.OrderRecorded{Applied: applied, Tier: res, PointsEarned: decimal.Zero}
	points := tier.PointsFor(total, held)
	if points.IsPositive() && uc.wallet != nil {
		txn, err := uc.wallet.Append(ctx, &walletdto.AppendInput{
			CustomerID:  c.ID,
			Type:        model.TransactionEarnPurchase,
			Amount:      points,
			Description: fmt.Sprintf("Points for order %s", input.OrderID),
			Reference:   "order:" + input.OrderID,
		})
		if err != nil {
			return nil, fmt.Errorf("earn points: %w", err)
		}
		out.PointsEarned = txn.Amount
	}
	return out, nil
}

func (uc *tierUseCase) AdjustSpend(ctx context.Context, input *dto.AdjustSpendInput) (*dto.RecomputeResult, error) {
	if err := uc.customers.AdjustSpend(ctx, input.CustomerID, model.Money(input.Delta), uc.policy.PeriodStart(uc.now())); err != nil {
		return nil, err
	}
	uc.logger.Info("monthly spend adjusted",
		zap.String("customer_id", input.CustomerID),
		zap.String("delta", input.Delta.String()),
		zap.String("note", input.Note),
		zap.String("adjusted_by", input.AdjustedBy),
	)
	return uc.Recompute(ctx, input.CustomerID, model.TierChangeAdminAdjustment)
}

// OverrideTier pins a tier until the next monthly reset. An empty TierID clears the pin.
func (uc *tierUseCase) OverrideTier(ctx context.Context, input *dto.OverrideTierInput) (*dto.RecomputeResult, error) {
	c, err := uc.customer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	ladder, err := uc.ladder(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	if input.TierID == "" {
		spend := uc.policy.EffectiveSpend(c, now)
		return uc.apply(ctx, c, ladder, ladder.Resolve(spend), false, model.TierChangeAdminOverride, spend, now)
	}

	target := ladder.ByID(input.TierID)
	if target == nil {
		return nil, tier.ErrTierNotFound
	}
	uc.logger.Info("tier override set",
		zap.String("customer_id", c.ID),
		zap.String("tier_id", target.ID),
		zap.String("adjusted_by", input.AdjustedBy),
	)
	return uc.apply(ctx, c, ladder, target, true, model.TierChangeAdminOverride, uc.policy.EffectiveSpend(c, now), now)
}

// ResetMonthlySpend zeroes every stale spend month and recomputes those customers' tiers. It
// is idempotent and safe to run at startup as a catch-up.
func (uc *tierUseCase) ResetMonthlySpend(ctx context.Context, now time.Time) (*dto.ResetSummary, error) {
	period := uc.policy.PeriodStart(now)
	summary := &dto.ResetSummary{PeriodStart: period}

	after := ""
	for {
		ids, err := uc.customers.ListStale(ctx, period, after, resetBatchSize)
		if err != nil {
			return summary, fmt.Errorf("list stale customers: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			after = id
			if err := uc.customers.ResetSpend(ctx, id, period); err != nil {
				summary.Failed++
				uc.logger.Error("failed to reset monthly spend", zap.String("customer_id", id), zap.Error(err))
				continue
			}
			res, err := uc.recomputeAt(ctx, id, model.TierChangeMonthlyReset, now)
			if err != nil {
				summary.Failed++
				uc.logger.Error("failed to recompute tier after reset", zap.String("customer_id", id), zap.Error(err))
				continue
			}
			summary.Reset++
			if res.Changed && tier.Better(res.From, res.To) {
				summary.Downgraded++
			}
		}
	}

	uc.logger.Info("monthly spend reset finished",
		zap.Time("period_start", period),
		zap.Int("reset", summary.Reset),
		zap.Int("downgraded", summary.Downgraded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (uc *tierUseCase) ListChanges(ctx context.Context, customerID string, limit int) ([]model.TierChange, error) {
	return uc.customers.ListTierChanges(ctx, customerID, limit)
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
