package voucher

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type Repository interface {
	// GetByCode matches codes case-insensitively and returns nil, nil when none exists.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	GetUserUsage(ctx context.Context, voucherID, customerID string) (int, error)
	FindRedemption(ctx context.Context, idempotencyKey string) (*model.VoucherRedemption, error)

	// IncrementUsage stores the redemption and bumps the global and per-customer counters in
	// one transaction, each increment conditional on its limit. A redemption already stored
	// under the same idempotency key is returned with replayed=true and nothing is counted.
	// ErrUsageConflict is returned when either limit is already reached.
	IncrementUsage(ctx context.Context, r *model.VoucherRedemption) (stored *model.VoucherRedemption, replayed bool, err error)
}
