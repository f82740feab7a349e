package repository

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListActiveTiers(ctx context.Context) ([]model.Tier, error) {
	var tiers []model.Tier
	query := `
        SELECT id, name, level, min_monthly_spending, discount_percentage, points_multiplier,
               free_shipping_threshold, priority_support, early_access, is_active,
               created_at, updated_at
        FROM tiers
        WHERE is_active = TRUE
        ORDER BY level ASC
    `
	if err := r.DB.SelectContext(ctx, &tiers, query); err != nil {
		return nil, err
	}
	return tiers, nil
}
