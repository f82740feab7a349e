package customer

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// FindByID returns nil, nil when the customer does not exist.
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	UpdateClass(ctx context.Context, id string, class model.CustomerClass) error

	// Spend bookkeeping. periodStart is the start of the current spend month; a stored
	// period older than it is reset before the amount is applied.
	RecordOrder(ctx context.Context, order *model.CompletedOrder, periodStart time.Time) (applied bool, err error)
	AdjustSpend(ctx context.Context, id string, delta decimal.Decimal, periodStart time.Time) error
	ListStale(ctx context.Context, periodStart time.Time, afterID string, limit int) ([]string, error)
	ResetSpend(ctx context.Context, id string, periodStart time.Time) error

	// ApplyTier stores the tier and, when change is non-nil, its audit record atomically.
	ApplyTier(ctx context.Context, id string, tierID *string, override bool, change *model.TierChange) error
	ListTierChanges(ctx context.Context, customerID string, limit int) ([]model.TierChange, error)
}
