package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionEarnPurchase    TransactionType = "EARN_PURCHASE"
	TransactionEarnBonus       TransactionType = "EARN_BONUS"
	TransactionEarnAdjustment  TransactionType = "EARN_ADJUSTMENT"
	TransactionSpendRedemption TransactionType = "SPEND_REDEMPTION"
	TransactionSpendAdjustment TransactionType = "SPEND_ADJUSTMENT"
	TransactionSpendExpiry     TransactionType = "SPEND_EXPIRY"
)

func (t TransactionType) IsEarn() bool  { return strings.HasPrefix(string(t), "EARN") }
func (t TransactionType) IsSpend() bool { return strings.HasPrefix(string(t), "SPEND") }

// Signed returns the balance delta of an amount for this transaction type.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.IsSpend() {
		return amount.Neg()
	}
	return amount
}

type WalletTransaction struct {
	ID           string          `db:"id" json:"id"`
	CustomerID   string          `db:"customer_id" json:"customer_id"`
	Type         TransactionType `db:"type" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balance_after"`
	Description  string          `db:"description" json:"description"`
	Reference    *string         `db:"reference" json:"reference"` // Idempotency key, unique per customer
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
