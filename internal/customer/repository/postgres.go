package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := `
        SELECT id, customer_class, monthly_spend, spend_period_start, tier_id, tier_override,
               created_at, updated_at
        FROM customers WHERE id = $1 LIMIT 1
    `
	err := r.DB.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) UpdateClass(ctx context.Context, id string, class model.CustomerClass) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE customers SET customer_class = $1, updated_at = NOW() WHERE id = $2`, class, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepository) RecordOrder(ctx context.Context, order *model.CompletedOrder, periodStart time.Time) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
        INSERT INTO completed_orders (order_id, customer_id, total, completed_at)
        VALUES (:order_id, :customer_id, :total, :completed_at)
        ON CONFLICT (order_id) DO NOTHING
    `, order)
	if err != nil {
		return false, fmt.Errorf("failed to record order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// Replayed event
		return false, nil
	}

	res, err = tx.ExecContext(ctx, `
        UPDATE customers
        SET monthly_spend = CASE WHEN spend_period_start < $1 THEN $2 ELSE monthly_spend + $2 END,
            spend_period_start = $1,
            tier_override = CASE WHEN spend_period_start < $1 THEN FALSE ELSE tier_override END,
            updated_at = NOW()
        WHERE id = $3
    `, periodStart, order.Total, order.CustomerID)
	if err != nil {
		return false, fmt.Errorf("failed to add spend: %w", err)
	}
	if err := expectRow(res); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *PGRepository) AdjustSpend(ctx context.Context, id string, delta decimal.Decimal, periodStart time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE customers
        SET monthly_spend = GREATEST(0, CASE WHEN spend_period_start < $1 THEN 0 ELSE monthly_spend END + $2),
            spend_period_start = $1,
            tier_override = CASE WHEN spend_period_start < $1 THEN FALSE ELSE tier_override END,
            updated_at = NOW()
        WHERE id = $3
    `, periodStart, delta, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepository) ListStale(ctx context.Context, periodStart time.Time, afterID string, limit int) ([]string, error) {
	var ids []string
	err := r.DB.SelectContext(ctx, &ids, `
        SELECT id FROM customers
        WHERE spend_period_start < $1 AND id > $2
        ORDER BY id
        LIMIT $3
    `, periodStart, afterID, limit)
	return ids, err
}

func (r *PGRepository) ResetSpend(ctx context.Context, id string, periodStart time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE customers
        SET monthly_spend = 0, spend_period_start = $1, tier_override = FALSE, updated_at = NOW()
        WHERE id = $2 AND spend_period_start < $1
    `, periodStart, id)
	return err
}

func (r *PGRepository) ApplyTier(ctx context.Context, id string, tierID *string, override bool, change *model.TierChange) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE customers SET tier_id = $1, tier_override = $2, updated_at = NOW() WHERE id = $3`,
		tierID, override, id)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	if err := expectRow(res); err != nil {
		return err
	}

	if change != nil {
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO tier_changes (id, customer_id, from_tier_id, to_tier_id, reason, monthly_spend, created_at)
            VALUES (:id, :customer_id, :from_tier_id, :to_tier_id, :reason, :monthly_spend, :created_at)
        `, change)
		if err != nil {
			return fmt.Errorf("failed to log tier change: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListTierChanges(ctx context.Context, customerID string, limit int) ([]model.TierChange, error) {
	var items []model.TierChange
	query := `SELECT * FROM tier_changes WHERE customer_id = $1 ORDER BY created_at DESC`
	args := []interface{}{customerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	err := r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func expectRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}
