package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory"
	"github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo     inventory.Repository
	locker   inventory.Locker
	products inventory.ProductInvalidator
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, locker inventory.Locker, products inventory.ProductInvalidator, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		locker:   locker,
		products: products,
		logger:   log,
		now:      time.Now,
	}
}

var manualTypes = map[model.MovementType]bool{
	model.MovementAdjustment: true,
	model.MovementRestock:    true,
	model.MovementDamage:     true,
	model.MovementReturn:     true,
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error) {
	if input.QuantityChange == 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	if !manualTypes[movementType] {
		return nil, inventory.ErrInvalidMovement
	}

	unlock, err := uc.lock(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		VariantID:      input.VariantID,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Reason,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      uc.now(),
	}
	if err := uc.repo.AdjustStock(ctx, movement); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.VariantID)
	return movement, nil
}

func (uc *inventoryUseCase) SetStock(ctx context.Context, input *dto.SetStockInput) (*model.StockMovement, error) {
	if input.Quantity < 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	unlock, err := uc.lock(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 1. Current stock, read under the variant lock
	v, err := uc.repo.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, inventory.ErrVariantNotFound
	}
	if v.StockQuantity == input.Quantity {
		return nil, nil
	}

	// 2. Record the difference as a count movement
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		VariantID:      v.ID,
		MovementType:   model.MovementCount,
		QuantityChange: input.Quantity - v.StockQuantity,
		Notes:          input.Reason,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      uc.now(),
	}
	if err := uc.repo.AdjustStock(ctx, movement); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, v.ID)
	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) lock(ctx context.Context, variantID string) (func(), error) {
	unlock, err := uc.locker.Lock(ctx, fmt.Sprintf("lock:stock:%s", variantID))
	if err != nil {
		uc.logger.Warn("failed to acquire stock lock", zap.String("variant_id", variantID), zap.Error(err))
		return nil, err
	}
	return unlock, nil
}

// invalidate drops cached products that show the variant. The stock change is already
// committed, so failures are only logged; cached entries expire on their own.
func (uc *inventoryUseCase) invalidate(ctx context.Context, variantID string) {
	ids, err := uc.repo.ProductIDsForVariant(ctx, variantID)
	if err != nil {
		uc.logger.Warn("failed to list products for variant", zap.String("variant_id", variantID), zap.Error(err))
		return
	}
	for _, id := range ids {
		if err := uc.products.InvalidateProduct(ctx, id); err != nil {
			uc.logger.Warn("failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
