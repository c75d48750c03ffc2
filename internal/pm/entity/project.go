package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 项目状态
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusClosed    = "closed"
)

// Project 施工项目
type Project struct {
	ID             string              `json:"id" gorm:"primaryKey;size:32"`
	CompanyID      string              `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_projects_company_code"`
	Code           string              `json:"code" gorm:"size:32;not null;uniqueIndex:idx_projects_company_code"`
	Name           string              `json:"name" gorm:"size:200;not null"`
	ClientName     string              `json:"client_name" gorm:"size:200"`
	Address        string              `json:"address" gorm:"size:500"`
	Status         string              `json:"status" gorm:"size:20;not null;default:planning"`
	ContractAmount decimal.NullDecimal `json:"contract_amount" gorm:"type:numeric(15,2)"`
	EstimatedCost  decimal.NullDecimal `json:"estimated_cost" gorm:"type:numeric(15,2)"`
	StartDate      *time.Time          `json:"start_date" gorm:"type:date"`
	EndDate        *time.Time          `json:"end_date" gorm:"type:date"`
	ManagerName    string              `json:"manager_name" gorm:"size:100"`
	CreatedBy      string              `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ValidProjectStatus 项目状态是否合法
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusClosed:
		return true
	}
	return false
}
