package entity

import (
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/shopspring/decimal"
)

// 投标类型
const (
	BidTypeGMP         = "GMP"
	BidTypeLumpSum     = "Lump Sum"
	BidTypeCSP         = "CSP"
	BidTypeDesignBuild = "Design-Build"
	BidTypeCostPlus    = "Cost Plus"
)

// Bid 投标
type Bid struct {
	ID            string              `json:"id" gorm:"primaryKey;size:32"`
	CompanyID     string              `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_bids_company_code"`
	Code          string              `json:"code" gorm:"size:32;not null;uniqueIndex:idx_bids_company_code"`
	ProjectName   string              `json:"project_name" gorm:"size:200;not null"`
	ClientName    string              `json:"client_name" gorm:"size:200"`
	BidType       string              `json:"bid_type" gorm:"size:32"`
	BidAmount     decimal.NullDecimal `json:"bid_amount" gorm:"type:numeric(15,2)"`
	EstimatedCost decimal.NullDecimal `json:"estimated_cost" gorm:"type:numeric(15,2)"`
	DueDate       *time.Time          `json:"due_date" gorm:"type:date"`
	Status        string              `json:"status" gorm:"size:20;not null;default:in_progress;index"`
	Notes         string              `json:"notes" gorm:"type:text"`
	SubmittedAt   *time.Time          `json:"submitted_at"`
	DecidedAt     *time.Time          `json:"decided_at"`
	CreatedBy     string              `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Bid) TableName() string { return "bids" }

// Record 转为指标引擎记录
func (b *Bid) Record() metrics.BidRecord {
	return metrics.BidRecord{
		ID:            b.ID,
		BidAmount:     metrics.FromNullDecimal(b.BidAmount),
		EstimatedCost: metrics.FromNullDecimal(b.EstimatedCost),
		DueDate:       b.DueDate,
		Status:        metrics.BidStatus(b.Status),
	}
}

// ApplyStatus 设置状态并记录提交/决标时间
func (b *Bid) ApplyStatus(status string, now time.Time) {
	if b.Status == status {
		return
	}
	b.Status = status
	switch metrics.BidStatus(status) {
	case metrics.BidStatusSubmitted:
		b.SubmittedAt = &now
	case metrics.BidStatusWon, metrics.BidStatusLost:
		b.DecidedAt = &now
	}
}
