package repositories

import (
	"pos-app/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Search returns candidate products for attachment, ranked exact-barcode
// first, then exact-SKU, then name substring. Stock quantity comes back live
// from the product row, not scoped to any session.
func (r *ProductRepository) Search(query string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := `SELECT * FROM products
	WHERE deleted_at IS NULL AND is_active = ?
	AND (barcode = ? OR sku = ? OR name LIKE ?)
	ORDER BY CASE
		WHEN barcode = ? THEN 0
		WHEN sku = ? THEN 1
		ELSE 2
	END, name ASC
	LIMIT ?`

	like := "%" + query + "%"
	var products []models.Product
	if err := r.db.Raw(sql, true, query, query, like, query, query, limit).Scan(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListPaged returns one page of products plus the total row count for the
// same filter so callers can compute page navigation.
func (r *ProductRepository) ListPaged(page, pageSize int, query string) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	tx := r.db.Model(&models.Product{}).Where("is_active = ?", true)
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("barcode = ? OR sku = ? OR name LIKE ?", query, query, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	offset := (page - 1) * pageSize
	if err := tx.Order("name asc").Limit(pageSize).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) GetMovements(productID uint, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []models.StockMovement
	err := r.db.Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
