package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"gorm.io/gorm"
)

// DailyLogRepository 施工日志仓库
type DailyLogRepository struct {
	db *gorm.DB
}

func NewDailyLogRepository(db *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

func (r *DailyLogRepository) List(ctx context.Context, companyID, projectID string) ([]entity.DailyLog, error) {
	return listByProject[entity.DailyLog](ctx, r.db, companyID, projectID, "log_date DESC")
}

func (r *DailyLogRepository) FindByID(ctx context.Context, companyID, id string) (*entity.DailyLog, error) {
	return findScoped[entity.DailyLog](ctx, r.db, companyID, id)
}

func (r *DailyLogRepository) Create(ctx context.Context, l *entity.DailyLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *DailyLogRepository) Update(ctx context.Context, l *entity.DailyLog) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *DailyLogRepository) Delete(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.DailyLog](ctx, r.db, companyID, id)
}
