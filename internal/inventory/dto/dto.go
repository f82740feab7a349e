package dto

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type AdjustStockInput struct {
	VariantID      string             `json:"variant_id"`
	QuantityChange int                `json:"quantity_change"`
	MovementType   model.MovementType `json:"movement_type"` // Defaults to adjustment
	Reason         string             `json:"reason"`
	ReferenceType  string             `json:"reference_type"` // e.g. 'purchase_order', 'return'
	ReferenceID    string             `json:"reference_id"`
	UserID         string             `json:"user_id"`
}

// SetStockInput records a physical count.
type SetStockInput struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	UserID    string `json:"user_id"`
}

type MovementFilters struct {
	VariantID    string     `json:"variant_id"`
	MovementType string     `json:"movement_type"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Page         int        `json:"page"`
	PageSize     int        `json:"page_size"`
}
