package entity

import (
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/shopspring/decimal"
)

// 费用类型
const (
	ExpensePropertyTax   = "property_tax"
	ExpenseInsurance     = "insurance"
	ExpenseManagementFee = "management_fee"
	ExpenseUtilities     = "utilities"
	ExpenseCAM           = "cam"
	ExpenseMarketing     = "marketing"
	ExpenseLegal         = "legal"
	ExpenseRepairs       = "repairs"
	ExpenseCapex         = "capex"
	ExpenseOther         = "other"
)

// ValidExpenseType 费用类型是否合法
func ValidExpenseType(t string) bool {
	switch t {
	case ExpensePropertyTax, ExpenseInsurance, ExpenseManagementFee, ExpenseUtilities, ExpenseCAM,
		ExpenseMarketing, ExpenseLegal, ExpenseRepairs, ExpenseCapex, ExpenseOther:
		return true
	}
	return false
}

// PropertyExpense 物业运营费用
type PropertyExpense struct {
	ID            string          `json:"id" gorm:"primaryKey;size:32"`
	CompanyID     string          `json:"company_id" gorm:"size:32;not null;index"`
	PropertyID    string          `json:"property_id" gorm:"size:32;not null;index"`
	ExpenseType   string          `json:"expense_type" gorm:"size:50;not null;index"`
	Description   string          `json:"description" gorm:"size:500"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	Frequency     string          `json:"frequency" gorm:"size:20;not null;default:monthly"`
	EffectiveDate *time.Time      `json:"effective_date" gorm:"type:date"`
	EndDate       *time.Time      `json:"end_date" gorm:"type:date"`
	VendorName    string          `json:"vendor_name" gorm:"size:200"`
	CreatedBy     string          `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (PropertyExpense) TableName() string { return "property_expenses" }

func (e *PropertyExpense) Record() metrics.PropertyExpenseRecord {
	return metrics.PropertyExpenseRecord{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		ExpenseType: e.ExpenseType,
		Amount:      e.Amount.InexactFloat64(),
		Frequency:   metrics.Frequency(e.Frequency),
	}
}
