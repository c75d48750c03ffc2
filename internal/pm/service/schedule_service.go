package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
)

// ScheduleService 阶段/任务/进度视图服务
type ScheduleService struct {
	projects *repository.ProjectRepository
	repo     *repository.ScheduleRepository
	deps     Deps
}

func NewScheduleService(projects *repository.ProjectRepository, repo *repository.ScheduleRepository, deps Deps) *ScheduleService {
	return &ScheduleService{projects: projects, repo: repo, deps: deps}
}

// TaskView 带时间区间的任务
type TaskView struct {
	entity.Task
	Window metrics.Window `json:"window"`
}

// PhaseView 阶段及其任务
type PhaseView struct {
	entity.Phase
	Completion     int        `json:"completion"`
	TaskCount      int        `json:"task_count"`
	CompletedTasks int        `json:"completed_tasks"`
	Tasks          []TaskView `json:"tasks"`
}

// ScheduleView 项目进度视图
type ScheduleView struct {
	ProjectID  string                  `json:"project_id"`
	Phases     []PhaseView             `json:"phases"`
	Unassigned []TaskView              `json:"unassigned"`
	Milestones []TaskView              `json:"milestones"`
	Summary    metrics.ScheduleSummary `json:"summary"`
}

type CreatePhaseRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder *int   `json:"sort_order"`
	Color     string `json:"color"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdatePhaseRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
	Color     *string `json:"color"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type CreateTaskRequest struct {
	PhaseID        *string `json:"phase_id"`
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	Status         string  `json:"status"`
	CompletionPct  int     `json:"completion_pct" binding:"min=0,max=100"`
	IsMilestone    bool    `json:"is_milestone"`
	IsCriticalPath bool    `json:"is_critical_path"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	AssigneeName   string  `json:"assignee_name"`
}

// UpdateTaskRequest 更新任务；PhaseID传空字符串表示移出阶段
type UpdateTaskRequest struct {
	PhaseID        *string `json:"phase_id"`
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	Status         *string `json:"status"`
	CompletionPct  *int    `json:"completion_pct" binding:"omitempty,min=0,max=100"`
	IsMilestone    *bool   `json:"is_milestone"`
	IsCriticalPath *bool   `json:"is_critical_path"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	AssigneeName   *string `json:"assignee_name"`
}

// === 进度视图 ===

// Schedule 项目进度：阶段汇总、任务分组、里程碑、整体统计
func (s *ScheduleService) Schedule(ctx context.Context, companyID, projectID string) (*ScheduleView, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	phases, err := s.repo.ListPhases(ctx, companyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx, companyID, projectID, nil)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	observability.ObserveComputation("schedule")
	return buildSchedule(projectID, phases, tasks, s.deps.now()), nil
}

func (s *ScheduleService) taskView(t entity.Task) TaskView {
	return TaskView{Task: t, Window: metrics.TaskWindow(t.Record(), s.deps.now())}
}

// CompanySummary 公司全部任务的进度统计
func (s *ScheduleService) CompanySummary(ctx context.Context, companyID string) (*metrics.ScheduleSummary, error) {
	tasks, err := s.repo.ListCompanyTasks(ctx, companyID)
	if err != nil {
		return nil, err
	}
	summary := metrics.SummarizeSchedule(taskRecords(tasks), s.deps.now())
	return &summary, nil
}

// ExportSchedule 导出阶段汇总与任务明细
func (s *ScheduleService) ExportSchedule(ctx context.Context, companyID, projectID string) ([]byte, error) {
	view, err := s.Schedule(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}

	phases := report.Sheet{
		Name: "Phases",
		Columns: []report.Column{
			{Header: "Order", Width: 8}, {Header: "Phase", Width: 28}, {Header: "Tasks", Width: 8},
			{Header: "Completed", Width: 10}, {Header: "Completion", Width: 12},
		},
	}
	tasks := report.Sheet{
		Name: "Tasks",
		Columns: []report.Column{
			{Header: "Phase", Width: 24}, {Header: "Task", Width: 32}, {Header: "Status", Width: 12},
			{Header: "Completion", Width: 12}, {Header: "Milestone", Width: 10}, {Header: "Critical", Width: 10},
			{Header: "Start", Width: 12}, {Header: "End", Width: 12}, {Header: "Window", Width: 10},
		},
	}
	addTasks := func(phase string, items []TaskView) {
		for _, t := range items {
			tasks.AddRow(phase, t.Name, t.Status, fmt.Sprintf("%d%%", t.CompletionPct), t.IsMilestone,
				t.IsCriticalPath, report.Date(t.StartDate), report.Date(t.EndDate), string(t.Window))
		}
	}
	for _, p := range view.Phases {
		phases.AddRow(p.SortOrder, p.Name, p.TaskCount, p.CompletedTasks, fmt.Sprintf("%d%%", p.Completion))
		addTasks(p.Name, p.Tasks)
	}
	addTasks("Unassigned", view.Unassigned)
	phases.Summary = []interface{}{"Total", "", view.Summary.TotalTasks, view.Summary.Completed, fmt.Sprintf("%d%%", view.Summary.Completion)}

	data, err := report.Bytes(phases, tasks)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return data, nil
}

func buildSchedule(projectID string, phases []entity.Phase, tasks []entity.Task, now time.Time) *ScheduleView {
	byID := make(map[string]entity.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	views := func(recs []metrics.TaskRecord) []TaskView {
		out := make([]TaskView, 0, len(recs))
		for _, r := range recs {
			out = append(out, TaskView{Task: byID[r.ID], Window: metrics.TaskWindow(r, now)})
		}
		return out
	}

	recs := taskRecords(tasks)
	phaseRecs := make([]metrics.PhaseRecord, len(phases))
	phaseByID := make(map[string]entity.Phase, len(phases))
	for i := range phases {
		phaseRecs[i] = phases[i].Record()
		phaseByID[phases[i].ID] = phases[i]
	}

	groups := metrics.GroupTasksByPhase(recs)
	view := &ScheduleView{
		ProjectID:  projectID,
		Phases:     make([]PhaseView, 0, len(phases)),
		Milestones: views(metrics.Milestones(recs)),
		Summary:    metrics.SummarizeSchedule(recs, now),
	}
	for _, r := range metrics.RollupPhases(phaseRecs, recs) {
		view.Phases = append(view.Phases, PhaseView{
			Phase:          phaseByID[r.PhaseID],
			Completion:     r.Completion,
			TaskCount:      r.TaskCount,
			CompletedTasks: r.CompletedTask,
			Tasks:          views(groups.ByPhase[r.PhaseID]),
		})
	}
	// 未分配及指向不存在阶段的任务，保持原始顺序
	var orphans []metrics.TaskRecord
	for _, r := range recs {
		if r.PhaseID == nil {
			orphans = append(orphans, r)
			continue
		}
		if _, ok := phaseByID[*r.PhaseID]; !ok {
			orphans = append(orphans, r)
		}
	}
	view.Unassigned = views(orphans)
	return view
}

func taskRecords(tasks []entity.Task) []metrics.TaskRecord {
	out := make([]metrics.TaskRecord, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Record()
	}
	return out
}

// === 阶段 ===

func (s *ScheduleService) ListPhases(ctx context.Context, companyID, projectID string) ([]entity.Phase, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListPhases(ctx, companyID, projectID)
}

// CreatePhase 创建阶段，未指定排序时追加到末尾
func (s *ScheduleService) CreatePhase(ctx context.Context, companyID, projectID string, req *CreatePhaseRequest) (*entity.Phase, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	order := 0
	if req.SortOrder != nil {
		order = *req.SortOrder
	} else {
		max, err := s.repo.MaxPhaseOrder(ctx, companyID, projectID)
		if err != nil {
			return nil, fmt.Errorf("phase order: %w", err)
		}
		order = max + 1
	}

	phase := &entity.Phase{
		ID:        uuid.New().String()[:32],
		CompanyID: companyID,
		ProjectID: projectID,
		Name:      req.Name,
		SortOrder: order,
		Color:     req.Color,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.repo.CreatePhase(ctx, phase); err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, phase.ID, "phase_create")
	return phase, nil
}

func (s *ScheduleService) UpdatePhase(ctx context.Context, companyID, id string, req *UpdatePhaseRequest) (*entity.Phase, error) {
	phase, err := s.repo.FindPhase(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		phase.Name = *req.Name
	}
	if req.SortOrder != nil {
		phase.SortOrder = *req.SortOrder
	}
	if req.Color != nil {
		phase.Color = *req.Color
	}
	if req.StartDate != nil {
		if phase.StartDate, err = parseDate(*req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if phase.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdatePhase(ctx, phase); err != nil {
		return nil, fmt.Errorf("update phase: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, phase.ID, "phase_update")
	return phase, nil
}

func (s *ScheduleService) DeletePhase(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeletePhase(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, id, "phase_delete")
	return nil
}

// === 任务 ===

// ListTasks 项目任务列表，filters支持phase_id(none=未分配)/status/window
func (s *ScheduleService) ListTasks(ctx context.Context, companyID, projectID string, filters map[string]string) ([]TaskView, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, companyID, projectID, filters)
	if err != nil {
		return nil, err
	}
	window := metrics.Window(filters["window"])
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := s.taskView(t)
		if window != "" && v.Window != window {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *ScheduleService) GetTask(ctx context.Context, companyID, id string) (*TaskView, error) {
	task, err := s.repo.FindTask(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := s.taskView(*task)
	return &v, nil
}

// CreateTask 创建任务
func (s *ScheduleService) CreateTask(ctx context.Context, companyID, projectID, userID string, req *CreateTaskRequest) (*TaskView, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	task := &entity.Task{
		ID:             uuid.New().String()[:32],
		CompanyID:      companyID,
		ProjectID:      projectID,
		Name:           req.Name,
		Description:    req.Description,
		Priority:       req.Priority,
		Status:         req.Status,
		CompletionPct:  req.CompletionPct,
		IsMilestone:    req.IsMilestone,
		IsCriticalPath: req.IsCriticalPath,
		AssigneeName:   req.AssigneeName,
		CreatedBy:      userID,
	}
	if task.Priority == "" {
		task.Priority = entity.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = string(metrics.TaskStatusNotStarted)
	}
	var err error
	if task.StartDate, err = parseDate(req.StartDate); err != nil {
		return nil, err
	}
	if task.EndDate, err = parseDate(req.EndDate); err != nil {
		return nil, err
	}
	if err := s.setPhase(ctx, task, req.PhaseID); err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	task.Normalize()

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, task.ID, "create")
	v := s.taskView(*task)
	return &v, nil
}

// UpdateTask 更新任务
func (s *ScheduleService) UpdateTask(ctx context.Context, companyID, id string, req *UpdateTaskRequest) (*TaskView, error) {
	task, err := s.repo.FindTask(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.PhaseID != nil {
		if err := s.setPhase(ctx, task, req.PhaseID); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.CompletionPct != nil {
		task.CompletionPct = *req.CompletionPct
	}
	if req.IsMilestone != nil {
		task.IsMilestone = *req.IsMilestone
	}
	if req.IsCriticalPath != nil {
		task.IsCriticalPath = *req.IsCriticalPath
	}
	if req.StartDate != nil {
		if task.StartDate, err = parseDate(*req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if task.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.AssigneeName != nil {
		task.AssigneeName = *req.AssigneeName
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	task.Normalize()

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, task.ID, "update")
	v := s.taskView(*task)
	return &v, nil
}

func (s *ScheduleService) DeleteTask(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteTask(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventTaskUpdate, id, "delete")
	return nil
}

// setPhase 设置任务所属阶段，阶段必须属于同一项目
func (s *ScheduleService) setPhase(ctx context.Context, task *entity.Task, phaseID *string) error {
	if phaseID == nil || *phaseID == "" {
		task.PhaseID = nil
		return nil
	}
	phase, err := s.repo.FindPhase(ctx, task.CompanyID, *phaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("phase %s not found", *phaseID)
		}
		return err
	}
	if phase.ProjectID != task.ProjectID {
		return invalid("phase %s belongs to another project", *phaseID)
	}
	id := phase.ID
	task.PhaseID = &id
	return nil
}

func validateTask(t *entity.Task) error {
	if t.CompletionPct < 0 || t.CompletionPct > 100 {
		return invalid("completion_pct must be between 0 and 100")
	}
	if !metrics.TaskStatus(t.Status).Valid() {
		return invalid("unknown status %q", t.Status)
	}
	switch t.Priority {
	case entity.TaskPriorityLow, entity.TaskPriorityMedium, entity.TaskPriorityHigh:
	default:
		return invalid("unknown priority %q", t.Priority)
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return invalid("end_date is before start_date")
	}
	return nil
}
