package checkout

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/checkout/dto"
)

type UseCase interface {
	// Quote prices a cart without changing anything.
	Quote(ctx context.Context, input *dto.QuoteInput) (*dto.Quote, error)
	// Complete re-prices the cart, redeems its voucher and books the order for loyalty.
	// Retrying with the same idempotency key and order id is safe.
	Complete(ctx context.Context, input *dto.CompleteInput) (*dto.Completion, error)
}
