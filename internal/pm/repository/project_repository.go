package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll 查询项目列表
func (r *ProjectRepository) FindAll(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	var items []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{}).Where("company_id = ?", companyID)
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ? OR client_name ILIKE ?", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *ProjectRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Project, error) {
	return findScoped[entity.Project](ctx, r.db, companyID, id)
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	return duplicate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	return duplicate(r.db.WithContext(ctx).Save(p).Error)
}

// Delete 删除项目及其下属记录
func (r *ProjectRepository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScoped[entity.Project](ctx, tx, companyID, id); err != nil {
			return err
		}
		for _, model := range []interface{}{
			&entity.Phase{}, &entity.Task{}, &entity.Submittal{}, &entity.RFI{},
			&entity.ChangeOrder{}, &entity.BudgetLine{}, &entity.DailyLog{},
		} {
			if err := tx.Where("company_id = ? AND project_id = ?", companyID, id).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateCode 生成项目编码 PRJ-{year}-{4位}
func (r *ProjectRepository) GenerateCode(ctx context.Context, companyID string, now time.Time) (string, error) {
	year := now.Format("2006")
	prefix := fmt.Sprintf("PRJ-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Select("COALESCE(MAX(code), '')").
		Where("company_id = ? AND code LIKE ?", companyID, prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, prefix+"%04d", &seq)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}
