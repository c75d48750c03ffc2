package entity

import (
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
)

// Submittal 送审资料
type Submittal struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID   string     `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID   string     `json:"project_id" gorm:"size:32;not null;uniqueIndex:idx_submittals_project_number"`
	Number      string     `json:"number" gorm:"size:32;not null;uniqueIndex:idx_submittals_project_number"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	SpecSection string     `json:"spec_section" gorm:"size:50"`
	Status      string     `json:"status" gorm:"size:20;not null;default:pending"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	SubmittedBy string     `json:"submitted_by" gorm:"size:100"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Submittal) TableName() string { return "submittals" }

func (s *Submittal) Record() metrics.SubmittalRecord {
	return metrics.SubmittalRecord{
		ID:         s.ID,
		Status:     metrics.SubmittalStatus(s.Status),
		DueDate:    s.DueDate,
		CreatedAt:  s.CreatedAt,
		ReviewedAt: s.ReviewedAt,
	}
}

// ApplyStatus 进入终态时记录审核时间
func (s *Submittal) ApplyStatus(status string, now time.Time) {
	if s.Status == status {
		return
	}
	s.Status = status
	if metrics.SubmittalStatus(status).Terminal() {
		s.ReviewedAt = &now
	} else {
		s.ReviewedAt = nil
	}
}

// RFI 信息请求
type RFI struct {
	ID         string     `json:"id" gorm:"primaryKey;size:32"`
	CompanyID  string     `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID  string     `json:"project_id" gorm:"size:32;not null;uniqueIndex:idx_rfis_project_number"`
	Number     string     `json:"number" gorm:"size:32;not null;uniqueIndex:idx_rfis_project_number"`
	Subject    string     `json:"subject" gorm:"size:200;not null"`
	Question   string     `json:"question" gorm:"type:text"`
	Answer     string     `json:"answer" gorm:"type:text"`
	Status     string     `json:"status" gorm:"size:20;not null;default:open"`
	DueDate    *time.Time `json:"due_date" gorm:"type:date"`
	AnsweredAt *time.Time `json:"answered_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (RFI) TableName() string { return "rfis" }

func (r *RFI) Record() metrics.RFIRecord {
	return metrics.RFIRecord{
		ID:         r.ID,
		Status:     metrics.RFIStatus(r.Status),
		DueDate:    r.DueDate,
		CreatedAt:  r.CreatedAt,
		AnsweredAt: r.AnsweredAt,
	}
}

// ApplyStatus 首次回复或关闭时记录回复时间
func (r *RFI) ApplyStatus(status string, now time.Time) {
	r.Status = status
	if metrics.RFIStatus(status).Terminal() {
		if r.AnsweredAt == nil {
			r.AnsweredAt = &now
		}
	} else {
		r.AnsweredAt = nil
	}
}
