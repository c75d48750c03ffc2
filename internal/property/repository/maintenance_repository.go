package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"gorm.io/gorm"
)

// MaintenanceRepository 维修工单仓库
type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// ListAll 按过滤条件查询全部工单；派生字段过滤与分页由服务层完成
func (r *MaintenanceRepository) ListAll(ctx context.Context, companyID string, filters map[string]string) ([]entity.MaintenanceRequest, error) {
	var items []entity.MaintenanceRequest
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if propertyID := filters["property_id"]; propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	err := query.Order("scheduled_date ASC NULLS LAST, created_at DESC").Find(&items).Error
	return items, err
}

func (r *MaintenanceRepository) FindByID(ctx context.Context, companyID, id string) (*entity.MaintenanceRequest, error) {
	var m entity.MaintenanceRequest
	err := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// CreateBatch 批量创建（导入）
func (r *MaintenanceRepository) CreateBatch(ctx context.Context, items []entity.MaintenanceRequest) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&items, 200).Error
}

func (r *MaintenanceRepository) Update(ctx context.Context, m *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MaintenanceRepository) Delete(ctx context.Context, companyID, id string) error {
	return affected(r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).Delete(&entity.MaintenanceRequest{}))
}
