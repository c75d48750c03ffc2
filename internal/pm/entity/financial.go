package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 变更单状态
const (
	ChangeOrderDraft    = "draft"
	ChangeOrderPending  = "pending"
	ChangeOrderApproved = "approved"
	ChangeOrderRejected = "rejected"
)

// ChangeOrder 变更单，仅approved计入合同金额
type ChangeOrder struct {
	ID          string          `json:"id" gorm:"primaryKey;size:32"`
	CompanyID   string          `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID   string          `json:"project_id" gorm:"size:32;not null;uniqueIndex:idx_change_orders_project_number"`
	Number      string          `json:"number" gorm:"size:32;not null;uniqueIndex:idx_change_orders_project_number"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null;default:0"`
	Status      string          `json:"status" gorm:"size:20;not null;default:draft"`
	ApprovedAt  *time.Time      `json:"approved_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (ChangeOrder) TableName() string { return "change_orders" }

// ValidChangeOrderStatus 变更单状态是否合法
func ValidChangeOrderStatus(s string) bool {
	switch s {
	case ChangeOrderDraft, ChangeOrderPending, ChangeOrderApproved, ChangeOrderRejected:
		return true
	}
	return false
}

// BudgetLine 预算科目
type BudgetLine struct {
	ID             string              `json:"id" gorm:"primaryKey;size:32"`
	CompanyID      string              `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID      string              `json:"project_id" gorm:"size:32;not null;index"`
	CostCode       string              `json:"cost_code" gorm:"size:32;not null"`
	Description    string              `json:"description" gorm:"size:200"`
	BudgetedAmount decimal.NullDecimal `json:"budgeted_amount" gorm:"type:numeric(15,2)"`
	ActualAmount   decimal.NullDecimal `json:"actual_amount" gorm:"type:numeric(15,2)"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (BudgetLine) TableName() string { return "budget_lines" }
