package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type AppendInput struct {
	CustomerID  string                `json:"customer_id"`
	Type        model.TransactionType `json:"type"`
	Amount      decimal.Decimal       `json:"amount"`
	Description string                `json:"description"`
	Reference   string                `json:"reference"` // Optional idempotency key
}

type HistoryFilters struct {
	CustomerID string `json:"customer_id"`
	Type       string `json:"type"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
