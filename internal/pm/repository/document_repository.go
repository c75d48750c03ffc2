package repository

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"gorm.io/gorm"
)

// DocumentRepository 送审与RFI仓库
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// === 送审 ===

func (r *DocumentRepository) ListSubmittals(ctx context.Context, companyID, projectID string) ([]entity.Submittal, error) {
	return listByProject[entity.Submittal](ctx, r.db, companyID, projectID, "number ASC")
}

// ListCompanySubmittals 公司全部送审（看板统计用）
func (r *DocumentRepository) ListCompanySubmittals(ctx context.Context, companyID string) ([]entity.Submittal, error) {
	var items []entity.Submittal
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&items).Error
	return items, err
}

func (r *DocumentRepository) FindSubmittal(ctx context.Context, companyID, id string) (*entity.Submittal, error) {
	return findScoped[entity.Submittal](ctx, r.db, companyID, id)
}

func (r *DocumentRepository) CreateSubmittal(ctx context.Context, s *entity.Submittal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *DocumentRepository) UpdateSubmittal(ctx context.Context, s *entity.Submittal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *DocumentRepository) DeleteSubmittal(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.Submittal](ctx, r.db, companyID, id)
}

func (r *DocumentRepository) NextSubmittalNumber(ctx context.Context, projectID string) (string, error) {
	return nextNumber(ctx, r.db, &entity.Submittal{}, projectID, "SUB")
}

// === RFI ===

func (r *DocumentRepository) ListRFIs(ctx context.Context, companyID, projectID string) ([]entity.RFI, error) {
	return listByProject[entity.RFI](ctx, r.db, companyID, projectID, "number ASC")
}

func (r *DocumentRepository) FindRFI(ctx context.Context, companyID, id string) (*entity.RFI, error) {
	return findScoped[entity.RFI](ctx, r.db, companyID, id)
}

func (r *DocumentRepository) CreateRFI(ctx context.Context, rfi *entity.RFI) error {
	return r.db.WithContext(ctx).Create(rfi).Error
}

func (r *DocumentRepository) UpdateRFI(ctx context.Context, rfi *entity.RFI) error {
	return r.db.WithContext(ctx).Save(rfi).Error
}

func (r *DocumentRepository) DeleteRFI(ctx context.Context, companyID, id string) error {
	return deleteScoped[entity.RFI](ctx, r.db, companyID, id)
}

func (r *DocumentRepository) NextRFINumber(ctx context.Context, projectID string) (string, error) {
	return nextNumber(ctx, r.db, &entity.RFI{}, projectID, "RFI")
}
