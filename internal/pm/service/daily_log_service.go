package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DailyLogService 施工日志服务
type DailyLogService struct {
	projects *repository.ProjectRepository
	repo     *repository.DailyLogRepository
	deps     Deps
}

func NewDailyLogService(projects *repository.ProjectRepository, repo *repository.DailyLogRepository, deps Deps) *DailyLogService {
	return &DailyLogService{projects: projects, repo: repo, deps: deps}
}

type DailyLogRequest struct {
	LogDate   string          `json:"log_date" binding:"required"`
	Weather   *entity.Weather `json:"weather"`
	CrewCount int             `json:"crew_count" binding:"min=0"`
	WorkDone  string          `json:"work_done"`
	Notes     string          `json:"notes"`
}

func (s *DailyLogService) List(ctx context.Context, companyID, projectID string) ([]entity.DailyLog, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, projectID)
}

func (s *DailyLogService) Get(ctx context.Context, companyID, id string) (*entity.DailyLog, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

func (s *DailyLogService) Create(ctx context.Context, companyID, projectID, userID string, req *DailyLogRequest) (*entity.DailyLog, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	l := &entity.DailyLog{
		ID:        uuid.New().String()[:32],
		CompanyID: companyID,
		ProjectID: projectID,
		CreatedBy: userID,
	}
	if err := applyDailyLog(l, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create daily log: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, l.ID, "daily_log_create")
	return l, nil
}

// Update 整体替换日志内容
func (s *DailyLogService) Update(ctx context.Context, companyID, id string, req *DailyLogRequest) (*entity.DailyLog, error) {
	l, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyDailyLog(l, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("update daily log: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, l.ID, "daily_log_update")
	return l, nil
}

func (s *DailyLogService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, id, "daily_log_delete")
	return nil
}

func applyDailyLog(l *entity.DailyLog, req *DailyLogRequest) error {
	date, err := parseDate(req.LogDate)
	if err != nil {
		return err
	}
	if date == nil {
		return invalid("log_date is required")
	}
	if req.CrewCount < 0 {
		return invalid("crew_count must be >= 0")
	}
	l.LogDate = *date
	l.CrewCount = req.CrewCount
	l.WorkDone = req.WorkDone
	l.Notes = req.Notes
	if req.Weather != nil {
		l.Weather = datatypes.NewJSONType(*req.Weather)
	}
	return nil
}
