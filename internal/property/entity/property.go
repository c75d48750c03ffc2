package entity

import "time"

// Property 物业
type Property struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	CompanyID    string    `json:"company_id" gorm:"size:32;not null;uniqueIndex:idx_properties_company_name"`
	Name         string    `json:"name" gorm:"size:200;not null;uniqueIndex:idx_properties_company_name"`
	PropertyType string    `json:"property_type" gorm:"size:50"`
	Address      string    `json:"address" gorm:"size:500"`
	Units        int       `json:"units" gorm:"not null;default:0"`
	CreatedBy    string    `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

// All 全部物业模型，用于AutoMigrate
func All() []interface{} {
	return []interface{}{&Property{}, &MaintenanceRequest{}, &PropertyExpense{}}
}
