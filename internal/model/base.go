package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MoneyScale is the number of decimal places kept for amounts in the store's base currency.
const MoneyScale = 2

// Money rounds an amount to MoneyScale places, half away from zero.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
