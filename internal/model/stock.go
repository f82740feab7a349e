package model

import "time"

type MovementType string

const (
	MovementAdjustment MovementType = "adjustment"
	MovementRestock    MovementType = "restock"
	MovementDamage     MovementType = "damage"
	MovementReturn     MovementType = "return"
	MovementCount      MovementType = "count" // Physical count, sets the absolute quantity
)

// StockMovement is one audited change to a component variant's stock.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	VariantID      string       `db:"variant_id" json:"variant_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int          `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int          `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedBy      *string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
