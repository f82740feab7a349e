package tier

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	ResolveTier(ctx context.Context, monthlySpend decimal.Decimal) (*model.Tier, error)
	// GetCustomerTier is read-only: it reports the effective tier without persisting anything.
	GetCustomerTier(ctx context.Context, customerID string) (*dto.CustomerTier, error)
	Recompute(ctx context.Context, customerID string, reason model.TierChangeReason) (*dto.RecomputeResult, error)

	RecordCompletedOrder(ctx context.Context, input *dto.CompletedOrderInput) (*dto.OrderRecorded, error)
	AdjustSpend(ctx context.Context, input *dto.AdjustSpendInput) (*dto.RecomputeResult, error)
	OverrideTier(ctx context.Context, input *dto.OverrideTierInput) (*dto.RecomputeResult, error)
	ResetMonthlySpend(ctx context.Context, now time.Time) (*dto.ResetSummary, error)
	ListChanges(ctx context.Context, customerID string, limit int) ([]model.TierChange, error)
}
