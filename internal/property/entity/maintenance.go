package entity

import (
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/shopspring/decimal"
)

// MaintenanceRequest 维修工单
type MaintenanceRequest struct {
	ID            string              `json:"id" gorm:"primaryKey;size:32"`
	CompanyID     string              `json:"company_id" gorm:"size:32;not null;index"`
	PropertyID    string              `json:"property_id" gorm:"size:32;not null;index"`
	Title         string              `json:"title" gorm:"size:200;not null"`
	Description   string              `json:"description" gorm:"type:text"`
	Category      string              `json:"category" gorm:"size:50"`
	Priority      string              `json:"priority" gorm:"size:20;not null;default:medium"`
	Status        string              `json:"status" gorm:"size:20;not null;default:submitted"`
	ScheduledDate *time.Time          `json:"scheduled_date" gorm:"type:date"`
	EstimatedCost decimal.NullDecimal `json:"estimated_cost" gorm:"type:numeric(15,2)"`
	ActualCost    decimal.NullDecimal `json:"actual_cost" gorm:"type:numeric(15,2)"`
	AssignedTo    string              `json:"assigned_to" gorm:"size:100"`
	CompletedAt   *time.Time          `json:"completed_at"`
	CreatedBy     string              `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (MaintenanceRequest) TableName() string { return "maintenance_requests" }

func (m *MaintenanceRequest) Record() metrics.MaintenanceRequestRecord {
	return metrics.MaintenanceRequestRecord{
		ID:            m.ID,
		Priority:      metrics.MaintenancePriority(m.Priority),
		Status:        metrics.MaintenanceStatus(m.Status),
		ScheduledDate: m.ScheduledDate,
		EstimatedCost: metrics.FromNullDecimal(m.EstimatedCost),
		ActualCost:    metrics.FromNullDecimal(m.ActualCost),
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
	}
}

// ApplyStatus 完成或关闭时记录完成时间，重新打开时清空
func (m *MaintenanceRequest) ApplyStatus(status string, now time.Time) {
	if m.Status == status {
		return
	}
	m.Status = status
	if metrics.MaintenanceStatus(status).Terminal() {
		if m.CompletedAt == nil {
			m.CompletedAt = &now
		}
	} else {
		m.CompletedAt = nil
	}
}

// NormalizePriority 兼容导入数据中的critical
func NormalizePriority(p string) string {
	if p == "critical" || p == "urgent" {
		return string(metrics.PriorityEmergency)
	}
	return p
}
