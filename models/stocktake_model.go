package models

import (
	"time"

	"gorm.io/gorm"
)

// Session statuses. The orchestrator itself only writes draft and balanced;
// in_progress and completed are set by callers through the update endpoint.
const (
	SessionStatusDraft      = "draft"
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusBalanced   = "balanced"
)

const (
	ItemStatusPending     = "pending"
	ItemStatusMatched     = "matched"
	ItemStatusDiscrepancy = "discrepancy"
)

type StocktakeSession struct {
	gorm.Model
	Code       string          `json:"code" gorm:"unique"`
	BranchName string          `json:"branch_name"`
	StaffName  string          `json:"staff_name"`
	Notes      string          `json:"notes"`
	Tags       string          `json:"tags"`
	Status     string          `json:"status" gorm:"default:'draft'"`
	BalancedAt *time.Time      `json:"balanced_at"`
	BalancedBy string          `json:"balanced_by"`
	CreatedBy  int             `json:"created_by"`
	UpdatedBy  int             `json:"updated_by"`
	Items      []StocktakeItem `json:"items" gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE"`
}

type StocktakeItem struct {
	gorm.Model
	SessionID uint   `json:"session_id" gorm:"uniqueIndex:idx_session_product"`
	ProductID uint   `json:"product_id" gorm:"uniqueIndex:idx_session_product"`
	SystemQty int    `json:"system_qty"`
	ActualQty *int   `json:"actual_qty"`
	Diff      *int   `json:"difference" gorm:"column:difference"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	Status    string `json:"status" gorm:"default:'pending'"`
	CreatedBy int    `json:"created_by"`
	UpdatedBy int    `json:"updated_by"`
}
