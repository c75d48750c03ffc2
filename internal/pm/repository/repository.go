package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// 唯一索引冲突转为 ErrDuplicate，需要 gorm.Config.TranslateError
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Repositories PM仓库集合
type Repositories struct {
	Project   *ProjectRepository
	Schedule  *ScheduleRepository
	Document  *DocumentRepository
	Financial *FinancialRepository
	DailyLog  *DailyLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:   NewProjectRepository(db),
		Schedule:  NewScheduleRepository(db),
		Document:  NewDocumentRepository(db),
		Financial: NewFinancialRepository(db),
		DailyLog:  NewDailyLogRepository(db),
	}
}

// findScoped 按公司+ID查找单条记录
func findScoped[T any](ctx context.Context, db *gorm.DB, companyID, id string) (*T, error) {
	var item T
	err := db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// deleteScoped 按公司+ID删除，未命中返回ErrNotFound
func deleteScoped[T any](ctx context.Context, db *gorm.DB, companyID, id string) error {
	var zero T
	res := db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).Delete(&zero)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// listByProject 项目下的全部记录
func listByProject[T any](ctx context.Context, db *gorm.DB, companyID, projectID, order string) ([]T, error) {
	var items []T
	err := db.WithContext(ctx).
		Where("company_id = ? AND project_id = ?", companyID, projectID).
		Order(order).
		Find(&items).Error
	return items, err
}

// nextNumber 项目内顺序编号，如 RFI-007
func nextNumber(ctx context.Context, db *gorm.DB, model interface{}, projectID, prefix string) (string, error) {
	var maxNumber string
	err := db.WithContext(ctx).
		Model(model).
		Select("COALESCE(MAX(number), '')").
		Where("project_id = ? AND number LIKE ?", projectID, prefix+"-%").
		Scan(&maxNumber).Error
	if err != nil {
		return "", err
	}
	var seq int
	if maxNumber != "" {
		fmt.Sscanf(maxNumber, prefix+"-%03d", &seq)
	}
	return fmt.Sprintf("%s-%03d", prefix, seq+1), nil
}
