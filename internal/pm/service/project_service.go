package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectService 项目服务
type ProjectService struct {
	repo      *repository.ProjectRepository
	financial *repository.FinancialRepository
	deps      Deps
}

func NewProjectService(repo *repository.ProjectRepository, financial *repository.FinancialRepository, deps Deps) *ProjectService {
	return &ProjectService{repo: repo, financial: financial, deps: deps}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Code           string   `json:"code"`
	Name           string   `json:"name" binding:"required"`
	ClientName     string   `json:"client_name"`
	Address        string   `json:"address"`
	Status         string   `json:"status"`
	ContractAmount *float64 `json:"contract_amount" binding:"omitempty,gte=0"`
	EstimatedCost  *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	ManagerName    string   `json:"manager_name"`
}

// UpdateProjectRequest 更新项目请求，nil字段不修改
type UpdateProjectRequest struct {
	Name           *string  `json:"name"`
	ClientName     *string  `json:"client_name"`
	Address        *string  `json:"address"`
	Status         *string  `json:"status"`
	ContractAmount *float64 `json:"contract_amount" binding:"omitempty,gte=0"`
	EstimatedCost  *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	ManagerName    *string  `json:"manager_name"`
}

// List 项目列表
func (s *ProjectService) List(ctx context.Context, companyID string, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	return s.repo.FindAll(ctx, companyID, page, pageSize, filters)
}

// Get 获取项目
func (s *ProjectService) Get(ctx context.Context, companyID, id string) (*entity.Project, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// Create 创建项目
func (s *ProjectService) Create(ctx context.Context, companyID, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	status := req.Status
	if status == "" {
		status = entity.ProjectStatusPlanning
	}
	if !entity.ValidProjectStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		if code, err = s.repo.GenerateCode(ctx, companyID, s.deps.now()); err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
	}

	project := &entity.Project{
		ID:             uuid.New().String()[:32],
		CompanyID:      companyID,
		Code:           code,
		Name:           req.Name,
		ClientName:     req.ClientName,
		Address:        req.Address,
		Status:         status,
		ContractAmount: metrics.ToNullDecimal(req.ContractAmount),
		EstimatedCost:  metrics.ToNullDecimal(req.EstimatedCost),
		StartDate:      start,
		EndDate:        end,
		ManagerName:    req.ManagerName,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("code %q already exists", code)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, project.ID, "create")
	return project, nil
}

// Update 更新项目
func (s *ProjectService) Update(ctx context.Context, companyID, id string, req *UpdateProjectRequest) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ClientName != nil {
		project.ClientName = *req.ClientName
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Status != nil {
		if !entity.ValidProjectStatus(*req.Status) {
			return nil, invalid("unknown status %q", *req.Status)
		}
		project.Status = *req.Status
	}
	if req.ContractAmount != nil {
		project.ContractAmount = metrics.ToNullDecimal(req.ContractAmount)
	}
	if req.EstimatedCost != nil {
		project.EstimatedCost = metrics.ToNullDecimal(req.EstimatedCost)
	}
	if req.StartDate != nil {
		if project.StartDate, err = parseDate(*req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if project.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.ManagerName != nil {
		project.ManagerName = *req.ManagerName
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("code %q already exists", project.Code)
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, project.ID, "update")
	return project, nil
}

// Delete 删除项目
func (s *ProjectService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	// 级联删除了全部子记录，留痕
	s.deps.logger().Info("Project deleted with children",
		zap.String("company_id", companyID),
		zap.String("project_id", id))
	s.deps.Notifier.Changed(ctx, companyID, sse.EventProjectUpdate, id, "delete")
	return nil
}

// === 预算视图 ===

// BudgetLineView 带使用率的预算科目
type BudgetLineView struct {
	entity.BudgetLine
	UtilizationPct  int                     `json:"utilization_pct"`
	UtilizationTier metrics.UtilizationTier `json:"utilization_tier"`
}

// BudgetView 项目预算汇总
type BudgetView struct {
	ProjectID         string                  `json:"project_id"`
	ContractAmount    *float64                `json:"contract_amount"`
	ApprovedChanges   float64                 `json:"approved_changes"`
	PendingChanges    float64                 `json:"pending_changes"`
	RevisedContract   *float64                `json:"revised_contract"`
	EstimatedCost     *float64                `json:"estimated_cost"`
	TotalBudgeted     float64                 `json:"total_budgeted"`
	ActualCost        float64                 `json:"actual_cost"`
	UtilizationPct    int                     `json:"utilization_pct"`
	UtilizationTier   metrics.UtilizationTier `json:"utilization_tier"`
	MarginPct         *float64                `json:"margin_pct"`
	MarginTier        metrics.MarginTier      `json:"margin_tier,omitempty"`
	MarginDisplay     string                  `json:"margin_display"`
	RevisedDisplay    string                  `json:"revised_contract_display"`
	ActualCostDisplay string                  `json:"actual_cost_display"`
	Lines             []BudgetLineView        `json:"lines"`
}

// Budget 计算项目预算视图：修订合同额 = 合同额 + 已批准变更
func (s *ProjectService) Budget(ctx context.Context, companyID, projectID string) (*BudgetView, error) {
	project, err := s.repo.FindByID(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	orders, err := s.financial.ListChangeOrders(ctx, companyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list change orders: %w", err)
	}
	lines, err := s.financial.ListBudgetLines(ctx, companyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list budget lines: %w", err)
	}
	observability.ObserveComputation("project_budget")
	return buildBudget(project, orders, lines), nil
}

func buildBudget(project *entity.Project, orders []entity.ChangeOrder, lines []entity.BudgetLine) *BudgetView {
	approved, pending := decimal.Zero, decimal.Zero
	for _, co := range orders {
		switch co.Status {
		case entity.ChangeOrderApproved:
			approved = approved.Add(co.Amount)
		case entity.ChangeOrderPending:
			pending = pending.Add(co.Amount)
		}
	}

	budgeted, actual := decimal.Zero, decimal.Zero
	views := make([]BudgetLineView, 0, len(lines))
	for _, l := range lines {
		if l.BudgetedAmount.Valid {
			budgeted = budgeted.Add(l.BudgetedAmount.Decimal)
		}
		if l.ActualAmount.Valid {
			actual = actual.Add(l.ActualAmount.Decimal)
		}
		pct := metrics.BudgetUtilizationPct(metrics.FromNullDecimal(l.ActualAmount), metrics.FromNullDecimal(l.BudgetedAmount))
		views = append(views, BudgetLineView{
			BudgetLine:      l,
			UtilizationPct:  pct,
			UtilizationTier: metrics.ClassifyUtilization(pct),
		})
	}

	v := &BudgetView{
		ProjectID:       project.ID,
		ContractAmount:  metrics.FromNullDecimal(project.ContractAmount),
		ApprovedChanges: approved.InexactFloat64(),
		PendingChanges:  pending.InexactFloat64(),
		EstimatedCost:   metrics.FromNullDecimal(project.EstimatedCost),
		TotalBudgeted:   budgeted.InexactFloat64(),
		ActualCost:      actual.InexactFloat64(),
		RevisedDisplay:  metrics.NotComputable,
		Lines:           views,
	}
	if project.ContractAmount.Valid {
		revised := project.ContractAmount.Decimal.Add(approved).InexactFloat64()
		v.RevisedContract = &revised
		v.RevisedDisplay = metrics.FormatCurrency(revised)
	}
	v.ActualCostDisplay = metrics.FormatCurrency(v.ActualCost)
	v.UtilizationPct = metrics.BudgetUtilizationPct(&v.ActualCost, v.RevisedContract)
	v.UtilizationTier = metrics.ClassifyUtilization(v.UtilizationPct)

	pct, ok := metrics.MarginPct(v.RevisedContract, v.EstimatedCost)
	v.MarginTier = metrics.MarginTierOf(pct, ok)
	v.MarginDisplay = metrics.FormatMargin(pct, ok)
	if ok {
		v.MarginPct = &pct
	}
	return v
}
