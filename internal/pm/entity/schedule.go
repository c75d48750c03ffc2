package entity

import (
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
)

// 任务优先级
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Phase 项目阶段，完成度由任务推导，不存储
type Phase struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID string     `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID string     `json:"project_id" gorm:"size:32;not null;index"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	SortOrder int        `json:"sort_order" gorm:"not null;default:0"`
	Color     string     `json:"color" gorm:"size:20"`
	StartDate *time.Time `json:"start_date" gorm:"type:date"`
	EndDate   *time.Time `json:"end_date" gorm:"type:date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Phase) TableName() string { return "project_phases" }

func (p *Phase) Record() metrics.PhaseRecord {
	return metrics.PhaseRecord{ID: p.ID, Name: p.Name, Order: p.SortOrder}
}

// Task 项目任务，PhaseID为空表示未分配阶段
type Task struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID      string     `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID      string     `json:"project_id" gorm:"size:32;not null;index"`
	PhaseID        *string    `json:"phase_id" gorm:"size:32;index"`
	Name           string     `json:"name" gorm:"size:200;not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Priority       string     `json:"priority" gorm:"size:20;default:medium"`
	Status         string     `json:"status" gorm:"size:20;not null;default:not_started"`
	CompletionPct  int        `json:"completion_pct" gorm:"not null;default:0"`
	IsMilestone    bool       `json:"is_milestone" gorm:"default:false"`
	IsCriticalPath bool       `json:"is_critical_path" gorm:"default:false"`
	StartDate      *time.Time `json:"start_date" gorm:"type:date"`
	EndDate        *time.Time `json:"end_date" gorm:"type:date"`
	AssigneeName   string     `json:"assignee_name" gorm:"size:100"`
	CreatedBy      string     `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) Record() metrics.TaskRecord {
	return metrics.TaskRecord{
		ID:             t.ID,
		PhaseID:        t.PhaseID,
		CompletionPct:  t.CompletionPct,
		Status:         metrics.TaskStatus(t.Status),
		IsMilestone:    t.IsMilestone,
		IsCriticalPath: t.IsCriticalPath,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
	}
}

// Normalize 已完成任务完成度固定为100
func (t *Task) Normalize() {
	if metrics.TaskStatus(t.Status) == metrics.TaskStatusCompleted {
		t.CompletionPct = 100
	}
}
