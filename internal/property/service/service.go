package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/notify"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/bitfantasy/nimo-build/internal/shared/storage"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
)

// Deps 服务依赖，Batches/Store/Notifier可为nil
type Deps struct {
	Batches  *importer.BatchRepository
	Store    *storage.Store
	Notifier *notify.Notifier
	Logger   *zap.Logger
	MaxRows  int
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// readUpload 读取上传文件并校验必需列，返回原始字节用于归档
func (d *Deps) readUpload(fileName string, r io.Reader, required ...string) (*importer.Table, []byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	table, err := importer.Read(bytes.NewReader(raw), fileName, d.MaxRows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := table.RequireColumns(required...); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return table, raw, nil
}

// finishImport 归档源文件、记录批次、上报指标并通知
func (d *Deps) finishImport(ctx context.Context, companyID, userID, kind, fileName string, raw []byte, res *importer.Result) {
	d.archive(ctx, companyID, "imports", fileName, raw, res)
	if d.Batches != nil {
		if _, err := d.Batches.Record(ctx, companyID, userID, kind, fileName, res); err != nil {
			d.logger().Warn("Failed to record import batch", zap.String("entity", kind), zap.Error(err))
		}
	}
	observability.ObserveImport(kind, res.Imported, res.Failed)
	d.Notifier.Changed(ctx, companyID, sse.EventImportFinished, res.BatchID, kind)
}

// archive 归档到对象存储，失败只记日志
func (d *Deps) archive(ctx context.Context, companyID, kind, fileName string, data []byte, res *importer.Result) string {
	if !d.Store.Enabled() {
		return ""
	}
	key, err := d.Store.PutBytes(ctx, storage.ObjectName(kind, companyID, fileName, d.now()), data, report.ContentTypeFor(fileName))
	if err != nil {
		d.logger().Warn("Failed to archive file", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	if res != nil {
		res.ObjectKey = key
	}
	return key
}

// Services 物业服务集合
type Services struct {
	Property    *PropertyService
	Maintenance *MaintenanceService
	Expense     *ExpenseService
}

func NewServices(repos *repository.Repositories, deps Deps) *Services {
	return &Services{
		Property:    NewPropertyService(repos.Property, deps),
		Maintenance: NewMaintenanceService(repos.Property, repos.Maintenance, deps),
		Expense:     NewExpenseService(repos.Property, repos.Expense, deps),
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func parseDate(s string) (*time.Time, error) {
	d, err := importer.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return d, nil
}

// paginate 内存分页
func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
