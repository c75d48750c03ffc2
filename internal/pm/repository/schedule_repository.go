package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"gorm.io/gorm"
)

// ScheduleRepository 阶段与任务仓库
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// === 阶段 ===

func (r *ScheduleRepository) ListPhases(ctx context.Context, companyID, projectID string) ([]entity.Phase, error) {
	return listByProject[entity.Phase](ctx, r.db, companyID, projectID, "sort_order ASC, created_at ASC")
}

func (r *ScheduleRepository) FindPhase(ctx context.Context, companyID, id string) (*entity.Phase, error) {
	return findScoped[entity.Phase](ctx, r.db, companyID, id)
}

func (r *ScheduleRepository) CreatePhase(ctx context.Context, p *entity.Phase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ScheduleRepository) UpdatePhase(ctx context.Context, p *entity.Phase) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// DeletePhase 删除阶段，其下任务转为未分配
func (r *ScheduleRepository) DeletePhase(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScoped[entity.Phase](ctx, tx, companyID, id); err != nil {
			return err
		}
		return tx.Model(&entity.Task{}).
			Where("company_id = ? AND phase_id = ?", companyID, id).
			Update("phase_id", nil).Error
	})
}

// MaxPhaseOrder 项目当前最大排序号
func (r *ScheduleRepository) MaxPhaseOrder(ctx context.Context, companyID, projectID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&entity.Phase{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Where("company_id = ? AND project_id = ?", companyID, projectID).
		Scan(&max).Error
	return max, err
}

// === 任务 ===

// ListTasks 项目任务，可按阶段/状态过滤；phaseID为"none"时返回未分配任务
func (r *ScheduleRepository) ListTasks(ctx context.Context, companyID, projectID string, filters map[string]string) ([]entity.Task, error) {
	var items []entity.Task
	query := r.db.WithContext(ctx).Where("company_id = ? AND project_id = ?", companyID, projectID)
	switch phaseID := filters["phase_id"]; phaseID {
	case "":
	case "none":
		query = query.Where("phase_id IS NULL")
	default:
		query = query.Where("phase_id = ?", phaseID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("start_date ASC NULLS LAST, created_at ASC").Find(&items).Error
	return items, err
}

func (r *ScheduleRepository) FindTask(ctx context.Context, companyID, id string) (*entity.Task, error) {
	return findScoped[entity.Task](ctx, r.db, companyID, id)
}

func (r *ScheduleRepository) CreateTask(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ScheduleRepository) UpdateTask(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ScheduleRepository) DeleteTask(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.Task](ctx, r.db, companyID, id)
}

// ListCompanyTasks 公司全部任务（看板统计用）
func (r *ScheduleRepository) ListCompanyTasks(ctx context.Context, companyID string) ([]entity.Task, error) {
	var items []entity.Task
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&items).Error
	return items, err
}
