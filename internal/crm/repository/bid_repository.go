package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-build/internal/crm/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BidRepository 投标仓库
type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) scoped(ctx context.Context, companyID string, filters map[string]string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Bid{}).Where("company_id = ?", companyID)
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if bidType := filters["bid_type"]; bidType != "" {
		query = query.Where("bid_type = ?", bidType)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("project_name ILIKE ? OR client_name ILIKE ? OR code ILIKE ?", like, like, like)
	}
	return query
}

// ListAll 按条件查询全部投标（派生指标需要在完整集合上计算）
func (r *BidRepository) ListAll(ctx context.Context, companyID string, filters map[string]string) ([]entity.Bid, error) {
	var items []entity.Bid
	err := r.scoped(ctx, companyID, filters).
		Order("due_date ASC NULLS LAST, created_at DESC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找投标
func (r *BidRepository) FindByID(ctx context.Context, companyID, id string) (*entity.Bid, error) {
	var bid entity.Bid
	err := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bid, nil
}

// Create 创建投标，编码重复返回 ErrDuplicate
func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return duplicate(r.db.WithContext(ctx).Create(bid).Error)
}

// Update 更新投标
func (r *BidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	return duplicate(r.db.WithContext(ctx).Save(bid).Error)
}

// 需要 gorm.Config.TranslateError 开启
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Delete 删除投标
func (r *BidRepository) Delete(ctx context.Context, companyID, id string) error {
	res := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).Delete(&entity.Bid{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert 导入时按 company_id+code 覆盖
func (r *BidRepository) Upsert(ctx context.Context, bids []entity.Bid) error {
	if len(bids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"project_name", "client_name", "bid_type", "bid_amount", "estimated_cost",
			"due_date", "status", "notes", "updated_at",
		}),
	}).CreateInBatches(bids, 200).Error
}

// GenerateCodes 生成n个连续编码 BID-{year}-{4位}，年份取自 now
func (r *BidRepository) GenerateCodes(ctx context.Context, companyID string, n int, now time.Time) ([]string, error) {
	year := now.Format("2006")
	prefix := fmt.Sprintf("BID-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Bid{}).
		Select("COALESCE(MAX(code), '')").
		Where("company_id = ? AND code LIKE ?", companyID, prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return nil, err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, prefix+"%04d", &seq)
	}
	codes := make([]string, n)
	for i := range codes {
		seq++
		codes[i] = fmt.Sprintf("%s%04d", prefix, seq)
	}
	return codes, nil
}

// GenerateCode 生成单个编码
func (r *BidRepository) GenerateCode(ctx context.Context, companyID string, now time.Time) (string, error) {
	codes, err := r.GenerateCodes(ctx, companyID, 1, now)
	if err != nil {
		return "", err
	}
	return codes[0], nil
}
