package inventory

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type UseCase interface {
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error)
	// SetStock returns nil when the count matches the current stock.
	SetStock(ctx context.Context, input *dto.SetStockInput) (*model.StockMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}

// Locker serialises stock changes per variant.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ProductInvalidator drops cached products whose stock figures changed.
type ProductInvalidator interface {
	InvalidateProduct(ctx context.Context, id string) error
}
