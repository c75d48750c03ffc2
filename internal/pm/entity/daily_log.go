package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Weather 日志天气信息，jsonb存储
type Weather struct {
	Conditions    string `json:"conditions"`
	HighTempF     *int   `json:"high_temp_f,omitempty"`
	LowTempF      *int   `json:"low_temp_f,omitempty"`
	Precipitation bool   `json:"precipitation"`
}

// DailyLog 施工日志
type DailyLog struct {
	ID        string                      `json:"id" gorm:"primaryKey;size:32"`
	CompanyID string                      `json:"company_id" gorm:"size:32;not null;index"`
	ProjectID string                      `json:"project_id" gorm:"size:32;not null;index"`
	LogDate   time.Time                   `json:"log_date" gorm:"type:date;not null"`
	Weather   datatypes.JSONType[Weather] `json:"weather" gorm:"type:jsonb"`
	CrewCount int                         `json:"crew_count" gorm:"not null;default:0"`
	WorkDone  string                      `json:"work_done" gorm:"type:text"`
	Notes     string                      `json:"notes" gorm:"type:text"`
	CreatedBy string                      `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func (DailyLog) TableName() string { return "daily_logs" }

// All 全部PM模型，用于AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Project{}, &Phase{}, &Task{}, &Submittal{}, &RFI{},
		&ChangeOrder{}, &BudgetLine{}, &DailyLog{},
	}
}
