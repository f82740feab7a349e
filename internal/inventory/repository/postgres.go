package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory"
	"github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error) {
	var v model.ComponentVariant
	query := `
        SELECT id, component_type, name, selling_price, merchant_price, stock_quantity,
               is_active, created_at, updated_at
        FROM component_variants WHERE id = $1 LIMIT 1
    `
	if err := r.DB.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) AdjustStock(ctx context.Context, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Conditional update, stock never goes negative
	var after int
	err = tx.GetContext(ctx, &after, `
        UPDATE component_variants
        SET stock_quantity = stock_quantity + $2, updated_at = $3
        WHERE id = $1 AND stock_quantity + $2 >= 0
        RETURNING stock_quantity
    `, m.VariantID, m.QuantityChange, m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM component_variants WHERE id = $1)`, m.VariantID); err != nil {
			return err
		}
		if !exists {
			return inventory.ErrVariantNotFound
		}
		return inventory.ErrInsufficientStock
	}
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	m.QuantityAfter = after
	m.QuantityBefore = after - m.QuantityChange

	// 2. Log Movement
	insertLogQuery := `
        INSERT INTO stock_movements (
            id, variant_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :variant_id, :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertLogQuery, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ProductIDsForVariant(ctx context.Context, variantID string) ([]string, error) {
	var ids []string
	err := r.DB.SelectContext(ctx, &ids, `SELECT product_id FROM product_components WHERE variant_id = $1`, variantID)
	return ids, err
}
