package services_test

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"pos-app/config"
	"pos-app/controllers/idgen"
	"pos-app/database"
	"pos-app/models"
	"pos-app/repositories"
	"pos-app/services"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	config.LoadConfig()
	idgen.Init()
	os.Exit(m.Run())
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// a fresh pooled connection would get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newService(t *testing.T) (*services.StocktakeService, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	repo := repositories.NewStocktakeRepository(db)
	return services.NewStocktakeService(db, repo, nil), db
}

func createProduct(t *testing.T, db *gorm.DB, name, sku, barcode string, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		SKU:           sku,
		Barcode:       barcode,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func TestGenerateSessionCode(t *testing.T) {
	ts := time.Date(2025, 3, 1, 14, 5, 33, 0, time.UTC)
	assert.Equal(t, "IAN202503011405", services.GenerateSessionCode(ts))
}

func TestCreateSessionDefaults(t *testing.T) {
	svc, db := newService(t)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.Code, "IAN"))
	assert.Equal(t, models.SessionStatusDraft, session.Status)
	assert.NotEmpty(t, session.BranchName)
	assert.NotEmpty(t, session.StaffName)
	assert.Nil(t, session.BalancedAt)

	var stored models.StocktakeSession
	require.NoError(t, db.First(&stored, session.ID).Error)
	assert.Equal(t, session.Code, stored.Code)
}

func TestCreateSessionCodeUnique(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.CreateSession("HN", "alice", "", "", 1)
	require.NoError(t, err)
	second, err := svc.CreateSession("HN", "alice", "", "", 1)
	require.NoError(t, err)

	// both sessions almost always land in the same minute, so the second
	// must have taken the suffix path; either way codes never collide
	assert.NotEqual(t, first.Code, second.Code)
	assert.True(t, strings.HasPrefix(second.Code, "IAN"))
}

// occupyCodes inserts bare session rows holding the given codes so a later
// CreateSession hits the unique constraint instead of a free slot.
func occupyCodes(t *testing.T, db *gorm.DB, codes ...string) {
	t.Helper()
	for _, code := range codes {
		row := models.StocktakeSession{Code: code, BranchName: "HN", StaffName: "seed", Status: models.SessionStatusDraft}
		require.NoError(t, db.Create(&row).Error)
	}
}

func TestCreateSessionRetriesOnInsertConflict(t *testing.T) {
	svc, db := newService(t)

	// occupy the base code for this minute and the next, so the create
	// collides on insert regardless of a minute rollover mid-test
	now := time.Now()
	occupyCodes(t, db,
		services.GenerateSessionCode(now),
		services.GenerateSessionCode(now.Add(time.Minute)))

	session, err := svc.CreateSession("HN", "alice", "", "", 1)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(session.Code, "-2"))
}

func TestCreateSessionCodeExhausted(t *testing.T) {
	svc, db := newService(t)

	now := time.Now()
	for _, base := range []string{
		services.GenerateSessionCode(now),
		services.GenerateSessionCode(now.Add(time.Minute)),
	} {
		codes := []string{base}
		for i := 2; i <= 5; i++ {
			codes = append(codes, fmt.Sprintf("%s-%d", base, i))
		}
		occupyCodes(t, db, codes...)
	}

	_, err := svc.CreateSession("HN", "alice", "", "", 1)
	assert.ErrorIs(t, err, services.ErrCodeGenExhausted)
}

func TestAttachProductSnapshotsStock(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Cà phê sữa đá", "CF001", "8930001000014", 50)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)

	item, err := svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 50, item.SystemQty)
	assert.Equal(t, models.ItemStatusPending, item.Status)
	assert.Nil(t, item.ActualQty)
	assert.Nil(t, item.Diff)

	// a later stock change must not touch the snapshot
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock_quantity", 99).Error)
	var stored models.StocktakeItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 50, stored.SystemQty)
}

func TestAttachProductErrors(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Trà đào", "TR001", "8930001000021", 10)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)

	_, err = svc.AttachProduct(9999, product.ID, 1)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = svc.AttachProduct(session.ID, 9999, 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	assert.ErrorIs(t, err, services.ErrItemAttached)
}

func TestRecordCountComputesDifference(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Bánh mì thịt", "BM001", "8930001000038", 50)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)

	item, err := svc.RecordCount(session.ID, product.ID, 45, "Hỏng", "", 1)
	require.NoError(t, err)
	require.NotNil(t, item.ActualQty)
	require.NotNil(t, item.Diff)
	assert.Equal(t, 45, *item.ActualQty)
	assert.Equal(t, -5, *item.Diff)
	assert.Equal(t, models.ItemStatusDiscrepancy, item.Status)
	assert.Equal(t, "Hỏng", item.Reason)

	// exact match flips status to matched
	item, err = svc.RecordCount(session.ID, product.ID, 50, "", "", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, *item.Diff)
	assert.Equal(t, models.ItemStatusMatched, item.Status)
}

func TestRecordCountIdempotent(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Nước suối", "NS001", "8930001000045", 20)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.RecordCount(session.ID, product.ID, 18, "Vỡ", "ghi chú", 1)
	require.NoError(t, err)
	var first models.StocktakeItem
	require.NoError(t, db.Where("session_id = ? AND product_id = ?", session.ID, product.ID).First(&first).Error)

	_, err = svc.RecordCount(session.ID, product.ID, 18, "Vỡ", "ghi chú", 1)
	require.NoError(t, err)
	var second models.StocktakeItem
	require.NoError(t, db.Where("session_id = ? AND product_id = ?", session.ID, product.ID).First(&second).Error)

	assert.Equal(t, *first.ActualQty, *second.ActualQty)
	assert.Equal(t, *first.Diff, *second.Diff)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Notes, second.Notes)
}

func TestRecordCountWithoutAttach(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Trà sữa", "TS001", "8930001000052", 20)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)

	_, err = svc.RecordCount(session.ID, product.ID, 5, "", "", 1)
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	var count int64
	require.NoError(t, db.Model(&models.StocktakeItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBalanceEndToEnd(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "Cà phê đen", "CF002", "8930001000069", 50)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, product.ID, 45, "Hỏng", "", 1)
	require.NoError(t, err)

	start := time.Now()
	updated, err := svc.Balance(session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var stored models.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 45, stored.StockQuantity)

	var closed models.StocktakeSession
	require.NoError(t, db.First(&closed, session.ID).Error)
	assert.Equal(t, models.SessionStatusBalanced, closed.Status)
	assert.Equal(t, "alice", closed.BalancedBy)
	require.NotNil(t, closed.BalancedAt)
	assert.False(t, closed.BalancedAt.Before(start.Truncate(time.Second)))

	var movement models.StockMovement
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&movement).Error)
	assert.Equal(t, models.MovementTypeStocktake, movement.MovementType)
	assert.Equal(t, 50, movement.QtyBefore)
	assert.Equal(t, -5, movement.QtyChange)
	assert.Equal(t, 45, movement.QtyAfter)
	assert.Equal(t, session.Code, movement.DocumentCode)
	assert.Equal(t, "alice", movement.ActorName)
}

func TestBalancePartialCounts(t *testing.T) {
	svc, db := newService(t)
	p1 := createProduct(t, db, "SP 1", "SP001", "8930002000011", 10)
	p2 := createProduct(t, db, "SP 2", "SP002", "8930002000028", 20)
	p3 := createProduct(t, db, "SP 3", "SP003", "8930002000035", 30)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	for _, p := range []*models.Product{p1, p2, p3} {
		_, err = svc.AttachProduct(session.ID, p.ID, 1)
		require.NoError(t, err)
	}
	_, err = svc.RecordCount(session.ID, p1.ID, 8, "", "", 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, p2.ID, 20, "", "", 1)
	require.NoError(t, err)

	updated, err := svc.Balance(session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	var s1, s2, s3 models.Product
	require.NoError(t, db.First(&s1, p1.ID).Error)
	require.NoError(t, db.First(&s2, p2.ID).Error)
	require.NoError(t, db.First(&s3, p3.ID).Error)
	assert.Equal(t, 8, s1.StockQuantity)
	assert.Equal(t, 20, s2.StockQuantity)
	assert.Equal(t, 30, s3.StockQuantity) // uncounted line excluded

	var pending models.StocktakeItem
	require.NoError(t, db.Where("session_id = ? AND product_id = ?", session.ID, p3.ID).First(&pending).Error)
	assert.Equal(t, models.ItemStatusPending, pending.Status)
}

func TestBalanceNothingCounted(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "SP 4", "SP004", "8930002000042", 15)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.Balance(session.ID, "alice")
	assert.ErrorIs(t, err, services.ErrNothingToBalance)

	var stored models.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 15, stored.StockQuantity)

	var sess models.StocktakeSession
	require.NoError(t, db.First(&sess, session.ID).Error)
	assert.Equal(t, models.SessionStatusDraft, sess.Status)
	assert.Empty(t, sess.BalancedBy)
}

func TestBalanceRollsBackOnMissingProduct(t *testing.T) {
	svc, db := newService(t)
	p1 := createProduct(t, db, "SP 5", "SP005", "8930002000059", 40)
	p2 := createProduct(t, db, "SP 6", "SP006", "8930002000066", 60)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, p1.ID, 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, p2.ID, 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, p1.ID, 35, "", "", 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, p2.ID, 55, "", "", 1)
	require.NoError(t, err)

	// p2 disappears between counting and balancing; the first product's
	// write must not survive the failed transaction
	require.NoError(t, db.Delete(&models.Product{}, p2.ID).Error)

	_, err = svc.Balance(session.ID, "alice")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	var stored models.Product
	require.NoError(t, db.First(&stored, p1.ID).Error)
	assert.Equal(t, 40, stored.StockQuantity)

	var sess models.StocktakeSession
	require.NoError(t, db.First(&sess, session.ID).Error)
	assert.Equal(t, models.SessionStatusDraft, sess.Status)
	assert.Nil(t, sess.BalancedAt)

	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movements).Error)
	assert.Zero(t, movements)
}

func TestBalanceTwiceFails(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "SP 7", "SP007", "8930002000073", 25)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, product.ID, 24, "", "", 1)
	require.NoError(t, err)

	_, err = svc.Balance(session.ID, "alice")
	require.NoError(t, err)

	_, err = svc.Balance(session.ID, "bob")
	assert.ErrorIs(t, err, services.ErrAlreadyBalanced)

	var sess models.StocktakeSession
	require.NoError(t, db.First(&sess, session.ID).Error)
	assert.Equal(t, "alice", sess.BalancedBy)
}

func TestBalanceRequiresActor(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Balance(1, "")
	assert.ErrorIs(t, err, services.ErrMissingActor)
}

func TestUpdateSessionPatch(t *testing.T) {
	svc, db := newService(t)

	session, err := svc.CreateSession("", "", "ghi chú cũ", "", 1)
	require.NoError(t, err)

	err = svc.UpdateSession(session.ID, repositories.SessionPatch{}, 1)
	assert.ErrorIs(t, err, services.ErrNothingToUpdate)

	balanced := models.SessionStatusBalanced
	err = svc.UpdateSession(session.ID, repositories.SessionPatch{Status: &balanced}, 1)
	assert.ErrorIs(t, err, services.ErrStatusNotAllowed)

	notes := "ghi chú mới"
	status := models.SessionStatusInProgress
	err = svc.UpdateSession(session.ID, repositories.SessionPatch{Notes: &notes, Status: &status}, 1)
	require.NoError(t, err)

	var stored models.StocktakeSession
	require.NoError(t, db.First(&stored, session.ID).Error)
	assert.Equal(t, "ghi chú mới", stored.Notes)
	assert.Equal(t, models.SessionStatusInProgress, stored.Status)
	// the patch path never stamps balance audit fields
	assert.Nil(t, stored.BalancedAt)
	assert.Empty(t, stored.BalancedBy)

	err = svc.UpdateSession(9999, repositories.SessionPatch{Notes: &notes}, 1)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestUpdateSessionRejectedAfterBalance(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "SP 9", "SP009", "8930002000097", 30)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.RecordCount(session.ID, product.ID, 28, "", "", 1)
	require.NoError(t, err)
	_, err = svc.Balance(session.ID, "alice")
	require.NoError(t, err)

	// balanced is terminal: no patch may reopen the session
	draft := models.SessionStatusDraft
	err = svc.UpdateSession(session.ID, repositories.SessionPatch{Status: &draft}, 2)
	assert.ErrorIs(t, err, services.ErrSessionBalanced)

	notes := "sửa lại"
	err = svc.UpdateSession(session.ID, repositories.SessionPatch{Notes: &notes}, 2)
	assert.ErrorIs(t, err, services.ErrSessionBalanced)

	var stored models.StocktakeSession
	require.NoError(t, db.First(&stored, session.ID).Error)
	assert.Equal(t, models.SessionStatusBalanced, stored.Status)
	assert.Equal(t, "alice", stored.BalancedBy)
	assert.Empty(t, stored.Notes)

	// and the stock can never be applied a second time
	_, err = svc.Balance(session.ID, "mallory")
	assert.ErrorIs(t, err, services.ErrAlreadyBalanced)

	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).
		Where("document_code = ?", session.Code).Count(&movements).Error)
	assert.EqualValues(t, 1, movements)
}

func TestGetSessionDetail(t *testing.T) {
	svc, db := newService(t)
	product := createProduct(t, db, "SP 8", "SP008", "8930002000080", 12)

	session, err := svc.CreateSession("", "", "", "", 1)
	require.NoError(t, err)
	_, err = svc.AttachProduct(session.ID, product.ID, 1)
	require.NoError(t, err)

	detail, err := svc.GetSessionDetail(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Code, detail.Session.Code)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "SP 8", detail.Items[0].ProductName)
	assert.Equal(t, "SP008", detail.Items[0].SKU)
	assert.Equal(t, "8930002000080", detail.Items[0].Barcode)
	assert.Equal(t, 12, detail.Items[0].SystemQty)

	_, err = svc.GetSessionDetail(9999)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestListSessions(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.CreateSession("HN", "alice", "", "", 1)
	require.NoError(t, err)
	second, err := svc.CreateSession("HCM", "bob", "", "", 1)
	require.NoError(t, err)

	sessions, err := svc.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// newest first
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
}
