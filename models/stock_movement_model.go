package models

import (
	"pos-app/types"

	"gorm.io/gorm"
)

const (
	MovementTypeStocktake    = "stocktake"
	MovementTypeGoodsReceipt = "goods_receipt"
)

// StockMovement is the audit ledger: one row for every mutation of a
// product's stock quantity, whatever document caused it.
type StockMovement struct {
	gorm.Model
	Reference    types.SnowflakeID `json:"reference" gorm:"index"`
	ProductID    uint              `json:"product_id" gorm:"index"`
	MovementType string            `json:"movement_type"`
	QtyBefore    int               `json:"qty_before"`
	QtyChange    int               `json:"qty_change"`
	QtyAfter     int               `json:"qty_after"`
	DocumentCode string            `json:"document_code"`
	ActorName    string            `json:"actor_name"`
}
