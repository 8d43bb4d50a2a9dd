package repositories

import (
	"pos-app/models"

	"gorm.io/gorm"
)

type StocktakeRepository struct {
	db *gorm.DB
}

func NewStocktakeRepository(db *gorm.DB) *StocktakeRepository {
	return &StocktakeRepository{db: db}
}

// SessionPatch carries the optional fields of a partial session update.
// Only non-nil fields end up in the UPDATE statement.
type SessionPatch struct {
	Status     *string
	BranchName *string
	StaffName  *string
	Notes      *string
	Tags       *string
}

func (p SessionPatch) IsEmpty() bool {
	return p.Status == nil && p.BranchName == nil && p.StaffName == nil &&
		p.Notes == nil && p.Tags == nil
}

func (p SessionPatch) toColumns() map[string]interface{} {
	columns := map[string]interface{}{}
	if p.Status != nil {
		columns["status"] = *p.Status
	}
	if p.BranchName != nil {
		columns["branch_name"] = *p.BranchName
	}
	if p.StaffName != nil {
		columns["staff_name"] = *p.StaffName
	}
	if p.Notes != nil {
		columns["notes"] = *p.Notes
	}
	if p.Tags != nil {
		columns["tags"] = *p.Tags
	}
	return columns
}

// SessionItemRow is one stocktake line joined with the product columns the
// detail screen displays.
type SessionItemRow struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	SKU         string  `json:"sku"`
	Barcode     string  `json:"barcode"`
	ImageURL    string  `json:"image_url"`
	SystemQty   int     `json:"system_qty"`
	ActualQty   *int    `json:"actual_qty"`
	Difference  *int    `json:"difference"`
	Reason      string  `json:"reason"`
	Notes       string  `json:"notes"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
}

func (r *StocktakeRepository) CreateSession(session *models.StocktakeSession) error {
	return r.db.Create(session).Error
}

func (r *StocktakeRepository) GetSession(id uint) (*models.StocktakeSession, error) {
	var session models.StocktakeSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *StocktakeRepository) ListSessions() ([]models.StocktakeSession, error) {
	var sessions []models.StocktakeSession
	if err := r.db.Order("id desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateSession applies a partial update built from the patch. The caller is
// responsible for rejecting empty patches.
func (r *StocktakeRepository) UpdateSession(id uint, patch SessionPatch, updatedBy int) error {
	columns := patch.toColumns()
	columns["updated_by"] = updatedBy
	return r.db.Model(&models.StocktakeSession{}).Where("id = ?", id).Updates(columns).Error
}

func (r *StocktakeRepository) CreateItem(item *models.StocktakeItem) error {
	return r.db.Create(item).Error
}

func (r *StocktakeRepository) GetItem(sessionID, productID uint) (*models.StocktakeItem, error) {
	var item models.StocktakeItem
	err := r.db.Where("session_id = ? AND product_id = ?", sessionID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *StocktakeRepository) UpdateItemCount(itemID uint, actualQty, difference int, status, reason, notes string, updatedBy int) error {
	return r.db.Model(&models.StocktakeItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"actual_qty": actualQty,
		"difference": difference,
		"status":     status,
		"reason":     reason,
		"notes":      notes,
		"updated_by": updatedBy,
	}).Error
}

func (r *StocktakeRepository) GetSessionItemRows(sessionID uint) ([]SessionItemRow, error) {
	sql := `SELECT i.id, i.product_id, p.name AS product_name, p.sku, p.barcode,
	p.image_url, p.price,
	i.system_qty, i.actual_qty, i.difference, i.reason, i.notes, i.status
	FROM stocktake_items i
	JOIN products p ON p.id = i.product_id
	WHERE i.session_id = ? AND i.deleted_at IS NULL
	ORDER BY i.id ASC`

	var rows []SessionItemRow
	if err := r.db.Raw(sql, sessionID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
