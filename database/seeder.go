package database

import (
	"pos-app/config"
	"pos-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedUsers(db)
	SeedProducts(db)
}

func SeedUsers(db *gorm.DB) {
	var existing models.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
			if hashErr != nil {
				config.Log.WithError(hashErr).Error("failed to hash seed password")
				return
			}
			admin := models.User{
				Username: "admin",
				Password: string(hash),
				Name:     "Administrator",
				Role:     "admin",
				IsActive: true,
			}
			if err := db.Create(&admin).Error; err != nil {
				config.Log.WithError(err).Error("failed to seed admin user")
			}
		}
	}
}

func SeedProducts(db *gorm.DB) {
	products := []models.Product{
		{Name: "Cà phê sữa đá", SKU: "CF001", Barcode: "8930001000014", Unit: "ly", Price: 25000, StockQuantity: 100, IsActive: true},
		{Name: "Trà đào", SKU: "TR001", Barcode: "8930001000021", Unit: "ly", Price: 30000, StockQuantity: 80, IsActive: true},
		{Name: "Bánh mì thịt", SKU: "BM001", Barcode: "8930001000038", Unit: "cái", Price: 20000, StockQuantity: 50, IsActive: true},
		{Name: "Nước suối", SKU: "NS001", Barcode: "8930001000045", Unit: "chai", Price: 10000, StockQuantity: 200, IsActive: true},
	}

	for _, p := range products {
		var existing models.Product
		if err := db.Where("sku = ?", p.SKU).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&p)
			}
		}
	}
}
