package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"gorm.io/gorm"
)

// ExpenseRepository 物业费用仓库
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListAll 按property_id/expense_type/frequency过滤
func (r *ExpenseRepository) ListAll(ctx context.Context, companyID string, filters map[string]string) ([]entity.PropertyExpense, error) {
	var items []entity.PropertyExpense
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if propertyID := filters["property_id"]; propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if expenseType := filters["expense_type"]; expenseType != "" {
		query = query.Where("expense_type = ?", expenseType)
	}
	if frequency := filters["frequency"]; frequency != "" {
		query = query.Where("frequency = ?", frequency)
	}
	err := query.Order("expense_type ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (r *ExpenseRepository) FindByID(ctx context.Context, companyID, id string) (*entity.PropertyExpense, error) {
	var e entity.PropertyExpense
	err := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *entity.PropertyExpense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CreateBatch 批量创建（导入）
func (r *ExpenseRepository) CreateBatch(ctx context.Context, items []entity.PropertyExpense) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&items, 200).Error
}

func (r *ExpenseRepository) Update(ctx context.Context, e *entity.PropertyExpense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *ExpenseRepository) Delete(ctx context.Context, companyID, id string) error {
	return affected(r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).Delete(&entity.PropertyExpense{}))
}
