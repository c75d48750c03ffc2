package repository

import (
	"context"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"gorm.io/gorm"
)

// PropertyRepository 物业仓库
type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) FindAll(ctx context.Context, companyID, search string) ([]entity.Property, error) {
	var items []entity.Property
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if search != "" {
		query = query.Where("name ILIKE ? OR address ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *PropertyRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Property, error) {
	var p entity.Property
	err := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// NameIndex 物业名称(小写)到ID的映射，导入时按名称关联
func (r *PropertyRepository) NameIndex(ctx context.Context, companyID string) (map[string]string, error) {
	var items []entity.Property
	if err := r.db.WithContext(ctx).Select("id", "name").Where("company_id = ?", companyID).Find(&items).Error; err != nil {
		return nil, err
	}
	idx := make(map[string]string, len(items))
	for _, p := range items {
		idx[strings.ToLower(strings.TrimSpace(p.Name))] = p.ID
	}
	return idx, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) Update(ctx context.Context, p *entity.Property) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete 删除物业及其工单和费用
func (r *PropertyRepository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&entity.Property{})); err != nil {
			return err
		}
		if err := tx.Where("company_id = ? AND property_id = ?", companyID, id).Delete(&entity.MaintenanceRequest{}).Error; err != nil {
			return err
		}
		return tx.Where("company_id = ? AND property_id = ?", companyID, id).Delete(&entity.PropertyExpense{}).Error
	})
}
