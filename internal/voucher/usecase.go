package voucher

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher/dto"
)

// ContextResolver supplies the customer class for type-restricted vouchers.
type ContextResolver interface {
	Resolve(ctx context.Context, customerID string) pricingcontext.Resolution
}

type UseCase interface {
	// Evaluate never mutates anything.
	Evaluate(ctx context.Context, input *dto.EvaluateInput) (*dto.Evaluation, error)
	Redeem(ctx context.Context, input *dto.RedeemInput) (*dto.RedeemResult, error)
}
