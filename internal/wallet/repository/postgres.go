package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const txnColumns = "id, customer_id, type, amount, balance_after, description, reference, created_at"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.GetContext(ctx, &balance, `SELECT balance FROM wallet_balances WHERE customer_id = $1`, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *PGRepository) FindByReference(ctx context.Context, customerID, reference string) (*model.WalletTransaction, error) {
	var txn model.WalletTransaction
	err := r.DB.GetContext(ctx, &txn,
		`SELECT `+txnColumns+` FROM wallet_transactions WHERE customer_id = $1 AND reference = $2 LIMIT 1`,
		customerID, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.HistoryFilters) ([]model.WalletTransaction, int, error) {
	var items []model.WalletTransaction
	var count int

	conditions := []string{"customer_id = :customer_id"}
	args := map[string]interface{}{"customer_id": f.CustomerID}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM wallet_transactions" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	// Ledger order: creation order, ties broken by the sequence column.
	query := "SELECT " + txnColumns + " FROM wallet_transactions" +
		whereClause + " ORDER BY seq DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) AppendWithBalance(ctx context.Context, txn *model.WalletTransaction, balanceBefore decimal.Decimal) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Lock (or create) the balance row
	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_balances (customer_id, balance, updated_at) VALUES ($1, 0, NOW())
         ON CONFLICT (customer_id) DO NOTHING`, txn.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to init balance: %w", err)
	}

	var current decimal.Decimal
	err = tx.GetContext(ctx, &current,
		`SELECT balance FROM wallet_balances WHERE customer_id = $1 FOR UPDATE`, txn.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to lock balance: %w", err)
	}
	if !current.Equal(balanceBefore) {
		return wallet.ErrBalanceChanged
	}

	// 2. Ledger entry
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO wallet_transactions (id, customer_id, type, amount, balance_after, description, reference, created_at)
        VALUES (:id, :customer_id, :type, :amount, :balance_after, :description, :reference, :created_at)
    `, txn)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	// 3. Balance snapshot
	_, err = tx.ExecContext(ctx,
		`UPDATE wallet_balances SET balance = $1, updated_at = NOW() WHERE customer_id = $2`,
		txn.BalanceAfter, txn.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	return tx.Commit()
}
