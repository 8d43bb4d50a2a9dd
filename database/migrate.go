package database

import (
	"pos-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.StocktakeSession{},
		&models.StocktakeItem{},
		&models.GoodsReceipt{},
		&models.GoodsReceiptLine{},
		&models.StockMovement{},
	)
}
