package importer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch 一次导入的记录，错误明细存jsonb
type Batch struct {
	ID        string         `gorm:"primaryKey;size:32" json:"id"`
	CompanyID string         `gorm:"size:32;not null;index" json:"company_id"`
	Entity    string         `gorm:"size:32;not null" json:"entity"`
	FileName  string         `gorm:"size:255" json:"file_name"`
	ObjectKey string         `gorm:"size:512" json:"object_key"`
	Total     int            `json:"total"`
	Imported  int            `json:"imported"`
	Failed    int            `json:"failed"`
	Errors    datatypes.JSON `gorm:"type:jsonb" json:"errors"`
	CreatedBy string         `gorm:"size:32" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Batch) TableName() string { return "import_batches" }

// BatchRepository 导入批次仓库
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Record 保存导入结果，回填BatchID
func (r *BatchRepository) Record(ctx context.Context, companyID, userID, entity, fileName string, res *Result) (*Batch, error) {
	errs := res.Errors
	if errs == nil {
		errs = []RowError{}
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		ID:        uuid.New().String()[:32],
		CompanyID: companyID,
		Entity:    entity,
		FileName:  fileName,
		ObjectKey: res.ObjectKey,
		Total:     res.Total,
		Imported:  res.Imported,
		Failed:    res.Failed,
		Errors:    datatypes.JSON(raw),
		CreatedBy: userID,
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	res.BatchID = b.ID
	return b, nil
}

// List 最近的导入批次
func (r *BatchRepository) List(ctx context.Context, companyID, entity string, limit int) ([]Batch, error) {
	var items []Batch
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}
