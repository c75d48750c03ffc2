package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/notify"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
)

// Deps 服务依赖，Notifier可为nil
type Deps struct {
	Notifier *notify.Notifier
	Logger   *zap.Logger
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

// Services PM服务集合
type Services struct {
	Project   *ProjectService
	Schedule  *ScheduleService
	Document  *DocumentService
	Financial *FinancialService
	DailyLog  *DailyLogService
}

func NewServices(repos *repository.Repositories, deps Deps) *Services {
	return &Services{
		Project:   NewProjectService(repos.Project, repos.Financial, deps),
		Schedule:  NewScheduleService(repos.Project, repos.Schedule, deps),
		Document:  NewDocumentService(repos.Project, repos.Document, deps),
		Financial: NewFinancialService(repos.Project, repos.Financial, deps),
		DailyLog:  NewDailyLogService(repos.Project, repos.DailyLog, deps),
	}
}

// requireProject 校验项目属于当前公司
func requireProject(ctx context.Context, repo *repository.ProjectRepository, companyID, projectID string) (*entity.Project, error) {
	return repo.FindByID(ctx, companyID, projectID)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// parseDate 解析可选日期，格式错误归为参数错误
func parseDate(s string) (*time.Time, error) {
	d, err := importer.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return d, nil
}
