package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
)

// MaintenanceService 维修工单服务
type MaintenanceService struct {
	properties *repository.PropertyRepository
	repo       *repository.MaintenanceRepository
	deps       Deps
}

func NewMaintenanceService(properties *repository.PropertyRepository, repo *repository.MaintenanceRepository, deps Deps) *MaintenanceService {
	return &MaintenanceService{properties: properties, repo: repo, deps: deps}
}

// MaintenanceView 带区间和已开天数的工单
type MaintenanceView struct {
	entity.MaintenanceRequest
	Window   metrics.Window `json:"window"`
	DaysOpen int            `json:"days_open"`
}

// MaintenanceListFilter 工单过滤。PropertyID/Category/Search走数据库，其余按派生值在内存中过滤
type MaintenanceListFilter struct {
	PropertyID string
	Category   string
	Search     string
	Status     metrics.MaintenanceStatus
	Priority   metrics.MaintenancePriority
	OpenOnly   bool
	Window     metrics.Window
}

func (f MaintenanceListFilter) dbFilters() map[string]string {
	return map[string]string{
		"property_id": f.PropertyID,
		"category":    f.Category,
		"search":      f.Search,
	}
}

type CreateMaintenanceRequest struct {
	PropertyID    string   `json:"property_id" binding:"required"`
	Title         string   `json:"title" binding:"required,max=200"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	ScheduledDate string   `json:"scheduled_date"`
	EstimatedCost *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	AssignedTo    string   `json:"assigned_to"`
}

type UpdateMaintenanceRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Priority      *string  `json:"priority"`
	Status        *string  `json:"status"`
	ScheduledDate *string  `json:"scheduled_date"`
	EstimatedCost *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	ActualCost    *float64 `json:"actual_cost" binding:"omitempty,gte=0"`
	AssignedTo    *string  `json:"assigned_to"`
}

func (s *MaintenanceService) annotate(m entity.MaintenanceRequest) MaintenanceView {
	now := s.deps.now()
	rec := m.Record()
	return MaintenanceView{
		MaintenanceRequest: m,
		Window:             metrics.MaintenanceWindow(rec, now),
		DaysOpen:           metrics.MaintenanceDaysOpen(rec, now),
	}
}

func (s *MaintenanceService) filtered(ctx context.Context, companyID string, f MaintenanceListFilter) ([]entity.MaintenanceRequest, error) {
	items, err := s.repo.ListAll(ctx, companyID, f.dbFilters())
	if err != nil {
		return nil, err
	}
	now := s.deps.now()
	keep := metrics.MaintenanceFilter{Status: f.Status, Priority: f.Priority, OpenOnly: f.OpenOnly}.Predicate()
	return metrics.Filter(items, func(m entity.MaintenanceRequest) bool {
		rec := m.Record()
		if !keep(rec) {
			return false
		}
		return f.Window == "" || metrics.MaintenanceWindow(rec, now) == f.Window
	}), nil
}

// List 工单列表（分页）
func (s *MaintenanceService) List(ctx context.Context, companyID string, f MaintenanceListFilter, page, pageSize int) ([]MaintenanceView, int64, error) {
	items, err := s.filtered(ctx, companyID, f)
	if err != nil {
		return nil, 0, err
	}
	pageItems := paginate(items, page, pageSize)
	views := make([]MaintenanceView, 0, len(pageItems))
	for _, m := range pageItems {
		views = append(views, s.annotate(m))
	}
	return views, int64(len(items)), nil
}

// KPIs 工单统计，基于过滤后的集合
func (s *MaintenanceService) KPIs(ctx context.Context, companyID string, f MaintenanceListFilter) (*metrics.MaintenanceKPI, error) {
	items, err := s.filtered(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	observability.ObserveComputation("maintenance_kpis")
	k := metrics.MaintenanceKPIs(maintenanceRecords(items), s.deps.now())
	return &k, nil
}

func maintenanceRecords(items []entity.MaintenanceRequest) []metrics.MaintenanceRequestRecord {
	out := make([]metrics.MaintenanceRequestRecord, len(items))
	for i := range items {
		out[i] = items[i].Record()
	}
	return out
}

func (s *MaintenanceService) Get(ctx context.Context, companyID, id string) (*MaintenanceView, error) {
	m, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := s.annotate(*m)
	return &v, nil
}

// Create 创建工单
func (s *MaintenanceService) Create(ctx context.Context, companyID, userID string, req *CreateMaintenanceRequest) (*MaintenanceView, error) {
	if _, err := s.properties.FindByID(ctx, companyID, req.PropertyID); err != nil {
		return nil, err
	}
	scheduled, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	m := &entity.MaintenanceRequest{
		ID:            uuid.New().String()[:32],
		CompanyID:     companyID,
		PropertyID:    req.PropertyID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      entity.NormalizePriority(req.Priority),
		ScheduledDate: scheduled,
		EstimatedCost: metrics.ToNullDecimal(req.EstimatedCost),
		AssignedTo:    req.AssignedTo,
		CreatedBy:     userID,
	}
	if m.Priority == "" {
		m.Priority = string(metrics.PriorityMedium)
	}
	if !metrics.MaintenancePriority(m.Priority).Valid() {
		return nil, invalid("unknown priority %q", req.Priority)
	}
	status := req.Status
	if status == "" {
		status = string(metrics.MaintenanceSubmitted)
	}
	if !metrics.MaintenanceStatus(status).Valid() {
		return nil, invalid("unknown status %q", status)
	}
	m.ApplyStatus(status, s.deps.now())

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create maintenance request: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventMaintenanceUpdate, m.ID, "create")
	v := s.annotate(*m)
	return &v, nil
}

// Update 更新工单；状态转为completed/closed时记录完成时间
func (s *MaintenanceService) Update(ctx context.Context, companyID, id string, req *UpdateMaintenanceRequest) (*MaintenanceView, error) {
	m, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Category != nil {
		m.Category = *req.Category
	}
	if req.Priority != nil {
		p := entity.NormalizePriority(*req.Priority)
		if !metrics.MaintenancePriority(p).Valid() {
			return nil, invalid("unknown priority %q", *req.Priority)
		}
		m.Priority = p
	}
	if req.ScheduledDate != nil {
		if m.ScheduledDate, err = parseDate(*req.ScheduledDate); err != nil {
			return nil, err
		}
	}
	if req.EstimatedCost != nil {
		m.EstimatedCost = metrics.ToNullDecimal(req.EstimatedCost)
	}
	if req.ActualCost != nil {
		m.ActualCost = metrics.ToNullDecimal(req.ActualCost)
	}
	if req.AssignedTo != nil {
		m.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		if !metrics.MaintenanceStatus(*req.Status).Valid() {
			return nil, invalid("unknown status %q", *req.Status)
		}
		m.ApplyStatus(*req.Status, s.deps.now())
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update maintenance request: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventMaintenanceUpdate, m.ID, "update")
	v := s.annotate(*m)
	return &v, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventMaintenanceUpdate, id, "delete")
	return nil
}

// === 导入 ===

type maintenanceImportRow struct {
	Title    string `validate:"required,max=200"`
	Priority string `validate:"oneof=low medium high emergency"`
}

// Import 导入工单。property_name按名称关联物业，为空时使用defaultPropertyID
func (s *MaintenanceService) Import(ctx context.Context, companyID, userID, defaultPropertyID, fileName string, r io.Reader) (*importer.Result, error) {
	table, raw, err := s.deps.readUpload(fileName, r, "title")
	if err != nil {
		return nil, err
	}
	names, err := propertyIndex(ctx, s.properties, companyID, defaultPropertyID)
	if err != nil {
		return nil, err
	}

	res := &importer.Result{Total: len(table.Rows)}
	now := s.deps.now()
	var items []entity.MaintenanceRequest
	for _, row := range table.Rows {
		propertyID, err := resolveProperty(names, row.Get("property_name"), defaultPropertyID)
		if err != nil {
			res.Fail(row.Line, err)
			continue
		}
		m, err := maintenanceFromRow(row)
		if err != nil {
			res.Fail(row.Line, err)
			continue
		}
		m.ID = uuid.New().String()[:32]
		m.CompanyID = companyID
		m.PropertyID = propertyID
		m.CreatedBy = userID
		m.ApplyStatus(string(metrics.MaintenanceSubmitted), now)
		items = append(items, *m)
		res.OK()
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("create maintenance requests: %w", err)
	}

	s.deps.finishImport(ctx, companyID, userID, "maintenance", fileName, raw, res)
	return res, nil
}

func maintenanceFromRow(row importer.Row) (*entity.MaintenanceRequest, error) {
	priority := entity.NormalizePriority(strings.ToLower(row.Get("priority")))
	if priority == "" {
		priority = string(metrics.PriorityMedium)
	}
	if err := importer.Validate(maintenanceImportRow{Title: row.Get("title"), Priority: priority}); err != nil {
		return nil, err
	}
	scheduled, err := importer.ParseDate(row.Get("scheduled_date"))
	if err != nil {
		return nil, err
	}
	cost, err := importer.ParseMoney(row.Get("estimated_cost"))
	if err != nil {
		return nil, err
	}
	return &entity.MaintenanceRequest{
		Title:         row.Get("title"),
		Description:   row.Get("description"),
		Category:      row.Get("category"),
		Priority:      priority,
		ScheduledDate: scheduled,
		EstimatedCost: cost,
	}, nil
}

// propertyIndex 加载物业名称索引，并校验默认物业属于当前公司
func propertyIndex(ctx context.Context, repo *repository.PropertyRepository, companyID, defaultPropertyID string) (map[string]string, error) {
	if defaultPropertyID != "" {
		if _, err := repo.FindByID(ctx, companyID, defaultPropertyID); err != nil {
			return nil, err
		}
	}
	names, err := repo.NameIndex(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	return names, nil
}

// resolveProperty 按名称(忽略大小写)查找物业
func resolveProperty(names map[string]string, name, fallback string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		if fallback == "" {
			return "", fmt.Errorf("property_name is required")
		}
		return fallback, nil
	}
	id, ok := names[key]
	if !ok {
		return "", fmt.Errorf("unknown property %q", strings.TrimSpace(name))
	}
	return id, nil
}
