package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Name          string  `json:"name"`
	SKU           string  `json:"sku" gorm:"unique"`
	Barcode       string  `json:"barcode" gorm:"unique"`
	Unit          string  `json:"unit" gorm:"default:'pcs'"`
	Price         float64 `json:"price" gorm:"default:0"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity" gorm:"default:0"`
	// no default tag: gorm drops zero-valued defaulted fields on insert,
	// which would make IsActive=false unstorable through Create
	IsActive  bool `json:"is_active"`
	CreatedBy int  `json:"created_by"`
	UpdatedBy int  `json:"updated_by"`
}
