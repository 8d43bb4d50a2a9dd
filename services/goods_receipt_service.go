package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"pos-app/config"
	"pos-app/controllers/idgen"
	"pos-app/models"
	"pos-app/repositories"
	"pos-app/types"

	"gorm.io/gorm"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrReceiptPosted   = errors.New("receipt already posted")
	ErrReceiptEmpty    = errors.New("receipt has no lines")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

type GoodsReceiptService struct {
	db   *gorm.DB
	repo *repositories.GoodsReceiptRepository
}

func NewGoodsReceiptService(db *gorm.DB, repo *repositories.GoodsReceiptRepository) *GoodsReceiptService {
	return &GoodsReceiptService{db: db, repo: repo}
}

// generateReceiptCode builds GR<YYYYMMDD><seq>, restarting the sequence each
// day based on the last stored code.
func (s *GoodsReceiptService) generateReceiptCode() (string, error) {
	lastCode, err := s.repo.GetLastCode()
	if err != nil {
		return "", err
	}

	today := time.Now().Format("20060102")
	seq := 1
	if len(lastCode) == len("GR")+8+4 && lastCode[2:10] == today {
		lastSeq, err := strconv.Atoi(lastCode[10:])
		if err == nil {
			seq = lastSeq + 1
		}
	}

	return fmt.Sprintf("GR%s%04d", today, seq), nil
}

func (s *GoodsReceiptService) CreateReceipt(supplierName, notes string, createdBy int) (*models.GoodsReceipt, error) {
	code, err := s.generateReceiptCode()
	if err != nil {
		return nil, err
	}

	receipt := models.GoodsReceipt{
		Code:         code,
		SupplierName: supplierName,
		Notes:        notes,
		Status:       models.ReceiptStatusDraft,
		CreatedBy:    createdBy,
	}

	if err := s.repo.Create(&receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *GoodsReceiptService) GetReceipt(id uint) (*models.GoodsReceipt, error) {
	receipt, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}

func (s *GoodsReceiptService) ListReceipts() ([]models.GoodsReceipt, error) {
	return s.repo.List()
}

// AddLine appends a product line to a draft receipt.
func (s *GoodsReceiptService) AddLine(receiptID, productID uint, quantity int, unitCost float64, notes string, createdBy int) (*models.GoodsReceiptLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	receipt, err := s.GetReceipt(receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.Status == models.ReceiptStatusPosted {
		return nil, ErrReceiptPosted
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	line := models.GoodsReceiptLine{
		ReceiptID: receiptID,
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Notes:     notes,
		CreatedBy: createdBy,
	}

	if err := s.repo.AddLine(&line); err != nil {
		return nil, err
	}
	return &line, nil
}

// PostReceipt applies every line's quantity onto its product's stock as a
// delta (unlike the stocktake balance, which overwrites) in one transaction,
// with a movement row per product.
func (s *GoodsReceiptService) PostReceipt(receiptID uint, postedBy string) (int, error) {
	if postedBy == "" {
		return 0, ErrMissingActor
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var receipt models.GoodsReceipt
	if err := tx.Preload("Lines").First(&receipt, receiptID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrReceiptNotFound
		}
		return 0, err
	}
	if receipt.Status == models.ReceiptStatusPosted {
		tx.Rollback()
		return 0, ErrReceiptPosted
	}
	if len(receipt.Lines) == 0 {
		tx.Rollback()
		return 0, ErrReceiptEmpty
	}

	for _, line := range receipt.Lines {
		var product models.Product
		if err := tx.First(&product, line.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, err
		}

		newQty := product.StockQuantity + line.Quantity
		if err := tx.Model(&models.Product{}).Where("id = ?", line.ProductID).
			Update("stock_quantity", newQty).Error; err != nil {
			tx.Rollback()
			return 0, err
		}

		movement := models.StockMovement{
			Reference:    types.SnowflakeID(idgen.GenerateID()),
			ProductID:    line.ProductID,
			MovementType: models.MovementTypeGoodsReceipt,
			QtyBefore:    product.StockQuantity,
			QtyChange:    line.Quantity,
			QtyAfter:     newQty,
			DocumentCode: receipt.Code,
			ActorName:    postedBy,
		}
		if err := tx.Create(&movement).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	now := time.Now()
	result := tx.Model(&models.GoodsReceipt{}).
		Where("id = ? AND status <> ?", receiptID, models.ReceiptStatusPosted).
		Updates(map[string]interface{}{
			"status":    models.ReceiptStatusPosted,
			"posted_at": now,
			"posted_by": postedBy,
		})
	if result.Error != nil {
		tx.Rollback()
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return 0, ErrReceiptPosted
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	config.Log.WithFields(map[string]interface{}{
		"code":  receipt.Code,
		"lines": len(receipt.Lines),
	}).Info("goods receipt posted")

	return len(receipt.Lines), nil
}
