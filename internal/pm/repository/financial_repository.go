package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"gorm.io/gorm"
)

// FinancialRepository 变更单与预算仓库
type FinancialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) *FinancialRepository {
	return &FinancialRepository{db: db}
}

// === 变更单 ===

func (r *FinancialRepository) ListChangeOrders(ctx context.Context, companyID, projectID string) ([]entity.ChangeOrder, error) {
	return listByProject[entity.ChangeOrder](ctx, r.db, companyID, projectID, "number ASC")
}

func (r *FinancialRepository) FindChangeOrder(ctx context.Context, companyID, id string) (*entity.ChangeOrder, error) {
	return findScoped[entity.ChangeOrder](ctx, r.db, companyID, id)
}

func (r *FinancialRepository) CreateChangeOrder(ctx context.Context, co *entity.ChangeOrder) error {
	return r.db.WithContext(ctx).Create(co).Error
}

func (r *FinancialRepository) UpdateChangeOrder(ctx context.Context, co *entity.ChangeOrder) error {
	return r.db.WithContext(ctx).Save(co).Error
}

func (r *FinancialRepository) DeleteChangeOrder(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.ChangeOrder](ctx, r.db, companyID, id)
}

func (r *FinancialRepository) NextChangeOrderNumber(ctx context.Context, projectID string) (string, error) {
	return nextNumber(ctx, r.db, &entity.ChangeOrder{}, projectID, "CO")
}

// === 预算科目 ===

func (r *FinancialRepository) ListBudgetLines(ctx context.Context, companyID, projectID string) ([]entity.BudgetLine, error) {
	return listByProject[entity.BudgetLine](ctx, r.db, companyID, projectID, "cost_code ASC")
}

func (r *FinancialRepository) FindBudgetLine(ctx context.Context, companyID, id string) (*entity.BudgetLine, error) {
	return findScoped[entity.BudgetLine](ctx, r.db, companyID, id)
}

func (r *FinancialRepository) CreateBudgetLine(ctx context.Context, b *entity.BudgetLine) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *FinancialRepository) UpdateBudgetLine(ctx context.Context, b *entity.BudgetLine) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *FinancialRepository) DeleteBudgetLine(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.BudgetLine](ctx, r.db, companyID, id)
}
