package repositories

import (
	"pos-app/models"

	"gorm.io/gorm"
)

type GoodsReceiptRepository struct {
	db *gorm.DB
}

func NewGoodsReceiptRepository(db *gorm.DB) *GoodsReceiptRepository {
	return &GoodsReceiptRepository{db: db}
}

func (r *GoodsReceiptRepository) Create(receipt *models.GoodsReceipt) error {
	return r.db.Create(receipt).Error
}

func (r *GoodsReceiptRepository) GetByID(id uint) (*models.GoodsReceipt, error) {
	var receipt models.GoodsReceipt
	if err := r.db.Preload("Lines").First(&receipt, id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *GoodsReceiptRepository) GetLastCode() (string, error) {
	var receipt models.GoodsReceipt
	err := r.db.Order("id desc").First(&receipt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return receipt.Code, nil
}

func (r *GoodsReceiptRepository) List() ([]models.GoodsReceipt, error) {
	var receipts []models.GoodsReceipt
	if err := r.db.Order("id desc").Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *GoodsReceiptRepository) AddLine(line *models.GoodsReceiptLine) error {
	return r.db.Create(line).Error
}
