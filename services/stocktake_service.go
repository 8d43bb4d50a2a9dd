package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-app/config"
	"pos-app/controllers/idgen"
	"pos-app/models"
	"pos-app/repositories"
	"pos-app/types"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrItemAttached     = errors.New("product already attached to session")
	ErrNothingToBalance = errors.New("nothing to balance")
	ErrAlreadyBalanced  = errors.New("session already balanced")
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrSessionBalanced  = errors.New("balanced session is read-only")
	ErrMissingActor     = errors.New("balanced_by is required")
	ErrStatusNotAllowed = errors.New("status cannot be set to balanced directly")
	ErrCodeGenExhausted = errors.New("could not generate a unique session code")
)

const (
	defaultBranchName   = "Chi nhánh trung tâm"
	defaultStaffName    = "admin"
	sessionCodeAttempts = 5
)

// BalanceNotifier is told about completed balances. Nil is fine; the balance
// itself never depends on the notification.
type BalanceNotifier interface {
	SendBalanceReport(sessionCode, actor string, updated int) error
}

// StocktakeService is the reconciliation orchestrator: it owns the session
// lifecycle and is the only writer of the balanced audit fields.
type StocktakeService struct {
	db       *gorm.DB
	repo     *repositories.StocktakeRepository
	notifier BalanceNotifier
}

func NewStocktakeService(db *gorm.DB, repo *repositories.StocktakeRepository, notifier BalanceNotifier) *StocktakeService {
	return &StocktakeService{db: db, repo: repo, notifier: notifier}
}

// GenerateSessionCode builds IAN<YYYYMMDD><HHMM> from the clock. Two sessions
// created within the same minute collide on the base code, so CreateSession
// retries with a numeric suffix against the unique column.
func GenerateSessionCode(now time.Time) string {
	return "IAN" + now.Format("200601021504")
}

func (s *StocktakeService) CreateSession(branchName, staffName, notes, tags string, createdBy int) (*models.StocktakeSession, error) {
	if branchName == "" {
		branchName = defaultBranchName
	}
	if staffName == "" {
		staffName = defaultStaffName
	}

	// The unique column is the real arbiter: a pre-check would race with a
	// concurrent create in the same minute, so insert first and fall back to
	// the next suffix when the insert hits the constraint.
	base := GenerateSessionCode(time.Now())
	for attempt := 1; attempt <= sessionCodeAttempts; attempt++ {
		code := base
		if attempt > 1 {
			code = fmt.Sprintf("%s-%d", base, attempt)
		}

		session := models.StocktakeSession{
			Code:       code,
			BranchName: branchName,
			StaffName:  staffName,
			Notes:      notes,
			Tags:       tags,
			Status:     models.SessionStatusDraft,
			CreatedBy:  createdBy,
		}

		err := s.repo.CreateSession(&session)
		if err == nil {
			config.Log.WithField("code", session.Code).Info("stocktake session created")
			return &session, nil
		}
		if !isDuplicateKeyErr(err) {
			return nil, err
		}
	}

	return nil, ErrCodeGenExhausted
}

// isDuplicateKeyErr recognizes a unique-constraint violation across the
// supported drivers, which word the error differently.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// AttachProduct snapshots the product's live stock quantity into a new
// pending line. The snapshot is immutable afterwards: recounting changes
// actual_qty, never system_qty.
func (s *StocktakeService) AttachProduct(sessionID, productID uint, createdBy int) (*models.StocktakeItem, error) {
	if _, err := s.repo.GetSession(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if _, err := s.repo.GetItem(sessionID, productID); err == nil {
		return nil, ErrItemAttached
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := models.StocktakeItem{
		SessionID: sessionID,
		ProductID: productID,
		SystemQty: product.StockQuantity,
		Status:    models.ItemStatusPending,
		CreatedBy: createdBy,
	}

	if err := s.repo.CreateItem(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordCount stores the counted quantity and recomputes difference and
// status. Recording the same count twice leaves the item unchanged.
func (s *StocktakeService) RecordCount(sessionID, productID uint, actualQty int, reason, notes string, updatedBy int) (*models.StocktakeItem, error) {
	item, err := s.repo.GetItem(sessionID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	difference := actualQty - item.SystemQty
	status := models.ItemStatusDiscrepancy
	if difference == 0 {
		status = models.ItemStatusMatched
	}

	if err := s.repo.UpdateItemCount(item.ID, actualQty, difference, status, reason, notes, updatedBy); err != nil {
		return nil, err
	}

	item.ActualQty = &actualQty
	item.Diff = &difference
	item.Status = status
	item.Reason = reason
	item.Notes = notes
	return item, nil
}

// Balance commits the counted quantities back into the product table in one
// transaction: every counted line overwrites its product's stock with the
// counted value, a movement row is written per product, and the session is
// closed. Uncounted lines are excluded. Any failure rolls the whole thing
// back, so a reader never observes a partially balanced session.
func (s *StocktakeService) Balance(sessionID uint, balancedBy string) (int, error) {
	if balancedBy == "" {
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

	var session models.StocktakeSession
	if err := tx.First(&session, sessionID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	if session.Status == models.SessionStatusBalanced {
		tx.Rollback()
		return 0, ErrAlreadyBalanced
	}

	var items []models.StocktakeItem
	if err := tx.Where("session_id = ? AND actual_qty IS NOT NULL", sessionID).
		Order("id asc").Find(&items).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if len(items) == 0 {
		tx.Rollback()
		return 0, ErrNothingToBalance
	}

	for _, item := range items {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, err
		}

		newQty := *item.ActualQty
		result := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("stock_quantity", newQty)
		if result.Error != nil {
			tx.Rollback()
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return 0, ErrProductNotFound
		}

		movement := models.StockMovement{
			Reference:    types.SnowflakeID(idgen.GenerateID()),
			ProductID:    item.ProductID,
			MovementType: models.MovementTypeStocktake,
			QtyBefore:    product.StockQuantity,
			QtyChange:    newQty - product.StockQuantity,
			QtyAfter:     newQty,
			DocumentCode: session.Code,
			ActorName:    balancedBy,
		}
		if err := tx.Create(&movement).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	// Guarded close: the status predicate makes a second concurrent balance
	// affect zero rows instead of double-applying.
	now := time.Now()
	result := tx.Model(&models.StocktakeSession{}).
		Where("id = ? AND status <> ?", sessionID, models.SessionStatusBalanced).
		Updates(map[string]interface{}{
			"status":      models.SessionStatusBalanced,
			"balanced_at": now,
			"balanced_by": balancedBy,
		})
	if result.Error != nil {
		tx.Rollback()
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return 0, ErrAlreadyBalanced
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	config.Log.WithFields(map[string]interface{}{
		"code":    session.Code,
		"updated": len(items),
		"actor":   balancedBy,
	}).Info("stocktake session balanced")

	if s.notifier != nil {
		go func(code string, updated int) {
			if err := s.notifier.SendBalanceReport(code, balancedBy, updated); err != nil {
				config.Log.WithError(err).Warn("balance report mail failed")
			}
		}(session.Code, len(items))
	}

	return len(items), nil
}

// UpdateSession applies a partial update. Balance is the only writer of the
// balanced status and audit fields, so a patch may not set status=balanced,
// and a session that reached balanced never leaves it.
func (s *StocktakeService) UpdateSession(sessionID uint, patch repositories.SessionPatch, updatedBy int) error {
	if patch.IsEmpty() {
		return ErrNothingToUpdate
	}
	if patch.Status != nil && *patch.Status == models.SessionStatusBalanced {
		return ErrStatusNotAllowed
	}

	session, err := s.repo.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Status == models.SessionStatusBalanced {
		return ErrSessionBalanced
	}

	return s.repo.UpdateSession(sessionID, patch, updatedBy)
}

func (s *StocktakeService) ListSessions() ([]models.StocktakeSession, error) {
	return s.repo.ListSessions()
}

type SessionDetail struct {
	Session *models.StocktakeSession      `json:"session"`
	Items   []repositories.SessionItemRow `json:"items"`
}

func (s *StocktakeService) GetSessionDetail(sessionID uint) (*SessionDetail, error) {
	session, err := s.repo.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	items, err := s.repo.GetSessionItemRows(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionDetail{Session: session, Items: items}, nil
}
