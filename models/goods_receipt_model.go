package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReceiptStatusDraft  = "draft"
	ReceiptStatusPosted = "posted"
)

type GoodsReceipt struct {
	gorm.Model
	Code         string             `json:"code" gorm:"unique"`
	SupplierName string             `json:"supplier_name"`
	Notes        string             `json:"notes"`
	Status       string             `json:"status" gorm:"default:'draft'"`
	PostedAt     *time.Time         `json:"posted_at"`
	PostedBy     string             `json:"posted_by"`
	CreatedBy    int                `json:"created_by"`
	UpdatedBy    int                `json:"updated_by"`
	Lines        []GoodsReceiptLine `json:"lines" gorm:"foreignKey:ReceiptID;references:ID;constraint:OnDelete:CASCADE"`
}

type GoodsReceiptLine struct {
	gorm.Model
	ReceiptID uint    `json:"receipt_id"`
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost" gorm:"default:0"`
	Notes     string  `json:"notes"`
	CreatedBy int     `json:"created_by"`
}
