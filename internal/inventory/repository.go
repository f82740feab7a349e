package inventory

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type Repository interface {
	GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error)

	// AdjustStock applies movement.QuantityChange and logs the movement in one transaction,
	// filling QuantityBefore and QuantityAfter. Stock never drops below zero:
	// ErrInsufficientStock is returned and nothing is written.
	AdjustStock(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// ProductIDsForVariant lists the products the variant is attached to.
	ProductIDsForVariant(ctx context.Context, variantID string) ([]string, error)
}
