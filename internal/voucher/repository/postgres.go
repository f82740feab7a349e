package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const voucherColumns = `id, code, discount_type, discount_value, max_discount_amount, min_purchase_amount,
               max_usage_total, max_usage_per_user, customer_type_restriction, valid_from, valid_until,
               is_active, current_usage_count, created_at, updated_at`

const redemptionColumns = `id, voucher_id, customer_id, idempotency_key, order_id, subtotal, discount_amount, created_at`

func (r *PGRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	var v model.Voucher
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE upper(code) = upper($1) LIMIT 1`
	if err := r.DB.GetContext(ctx, &v, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) GetUserUsage(ctx context.Context, voucherID, customerID string) (int, error) {
	var count int
	query := `SELECT usage_count FROM voucher_usages WHERE voucher_id = $1 AND customer_id = $2`
	if err := r.DB.GetContext(ctx, &count, query, voucherID, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *PGRepository) FindRedemption(ctx context.Context, idempotencyKey string) (*model.VoucherRedemption, error) {
	return findRedemption(ctx, r.DB, idempotencyKey)
}

func findRedemption(ctx context.Context, q sqlx.QueryerContext, idempotencyKey string) (*model.VoucherRedemption, error) {
	var red model.VoucherRedemption
	query := `SELECT ` + redemptionColumns + ` FROM voucher_redemptions WHERE idempotency_key = $1`
	if err := sqlx.GetContext(ctx, q, &red, query, idempotencyKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &red, nil
}

func (r *PGRepository) IncrementUsage(ctx context.Context, red *model.VoucherRedemption) (*model.VoucherRedemption, bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// 1. Claim the idempotency key. A concurrent attempt with the same key waits here on the
	// unique index and then sees the committed row.
	res, err := tx.NamedExecContext(ctx, `
        INSERT INTO voucher_redemptions (`+redemptionColumns+`)
        VALUES (:id, :voucher_id, :customer_id, :idempotency_key, :order_id, :subtotal, :discount_amount, :created_at)
        ON CONFLICT (idempotency_key) DO NOTHING
    `, red)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert redemption: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		existing, err := findRedemption(ctx, tx, red.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, voucher.ErrUsageConflict
		}
		return existing, true, nil
	}

	// 2. Global counter
	res, err = tx.ExecContext(ctx, `
        UPDATE vouchers
        SET current_usage_count = current_usage_count + 1, updated_at = NOW()
        WHERE id = $1 AND is_active = TRUE
          AND (max_usage_total IS NULL OR current_usage_count < max_usage_total)
    `, red.VoucherID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to increment usage: %w", err)
	}
	if rows, err = res.RowsAffected(); err != nil {
		return nil, false, err
	}
	if rows == 0 {
		return nil, false, voucher.ErrUsageConflict
	}

	// 3. Per-customer counter
	res, err = tx.ExecContext(ctx, `
        INSERT INTO voucher_usages (voucher_id, customer_id, usage_count, updated_at)
        SELECT v.id, $2, 1, NOW() FROM vouchers v WHERE v.id = $1 AND v.max_usage_per_user > 0
        ON CONFLICT (voucher_id, customer_id) DO UPDATE
        SET usage_count = voucher_usages.usage_count + 1, updated_at = NOW()
        WHERE voucher_usages.usage_count < (SELECT max_usage_per_user FROM vouchers WHERE id = $1)
    `, red.VoucherID, red.CustomerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to increment customer usage: %w", err)
	}
	if rows, err = res.RowsAffected(); err != nil {
		return nil, false, err
	}
	if rows == 0 {
		return nil, false, voucher.ErrUsageConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return red, false, nil
}
