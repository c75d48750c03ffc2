package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialService 变更单与预算科目服务
type FinancialService struct {
	projects *repository.ProjectRepository
	repo     *repository.FinancialRepository
	deps     Deps
}

func NewFinancialService(projects *repository.ProjectRepository, repo *repository.FinancialRepository, deps Deps) *FinancialService {
	return &FinancialService{projects: projects, repo: repo, deps: deps}
}

type CreateChangeOrderRequest struct {
	Number      string  `json:"number"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
}

type UpdateChangeOrderRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Status      *string  `json:"status"`
}

type CreateBudgetLineRequest struct {
	CostCode       string   `json:"cost_code" binding:"required"`
	Description    string   `json:"description"`
	BudgetedAmount *float64 `json:"budgeted_amount" binding:"omitempty,gte=0"`
	ActualAmount   *float64 `json:"actual_amount" binding:"omitempty,gte=0"`
}

type UpdateBudgetLineRequest struct {
	CostCode       *string  `json:"cost_code"`
	Description    *string  `json:"description"`
	BudgetedAmount *float64 `json:"budgeted_amount" binding:"omitempty,gte=0"`
	ActualAmount   *float64 `json:"actual_amount" binding:"omitempty,gte=0"`
}

// === 变更单 ===

func (s *FinancialService) ListChangeOrders(ctx context.Context, companyID, projectID string) ([]entity.ChangeOrder, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListChangeOrders(ctx, companyID, projectID)
}

// CreateChangeOrder 创建变更单，编号为空时自动生成 CO-001
func (s *FinancialService) CreateChangeOrder(ctx context.Context, companyID, projectID string, req *CreateChangeOrderRequest) (*entity.ChangeOrder, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = entity.ChangeOrderDraft
	}
	if !entity.ValidChangeOrderStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	number := req.Number
	if number == "" {
		var err error
		if number, err = s.repo.NextChangeOrderNumber(ctx, projectID); err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
	}
	co := &entity.ChangeOrder{
		ID:          uuid.New().String()[:32],
		CompanyID:   companyID,
		ProjectID:   projectID,
		Number:      number,
		Title:       req.Title,
		Description: req.Description,
		Amount:      decimal.NewFromFloat(req.Amount).Round(2),
	}
	s.applyChangeOrderStatus(co, status)
	if err := s.repo.CreateChangeOrder(ctx, co); err != nil {
		return nil, fmt.Errorf("create change order: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, co.ID, "change_order_create")
	return co, nil
}

func (s *FinancialService) UpdateChangeOrder(ctx context.Context, companyID, id string, req *UpdateChangeOrderRequest) (*entity.ChangeOrder, error) {
	co, err := s.repo.FindChangeOrder(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		co.Title = *req.Title
	}
	if req.Description != nil {
		co.Description = *req.Description
	}
	if req.Amount != nil {
		co.Amount = decimal.NewFromFloat(*req.Amount).Round(2)
	}
	if req.Status != nil {
		if !entity.ValidChangeOrderStatus(*req.Status) {
			return nil, invalid("unknown status %q", *req.Status)
		}
		s.applyChangeOrderStatus(co, *req.Status)
	}
	if err := s.repo.UpdateChangeOrder(ctx, co); err != nil {
		return nil, fmt.Errorf("update change order: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, co.ID, "change_order_update")
	return co, nil
}

func (s *FinancialService) DeleteChangeOrder(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteChangeOrder(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, id, "change_order_delete")
	return nil
}

// applyChangeOrderStatus 批准时记录批准时间，离开approved时清空
func (s *FinancialService) applyChangeOrderStatus(co *entity.ChangeOrder, status string) {
	if co.Status == status {
		return
	}
	co.Status = status
	if status == entity.ChangeOrderApproved {
		now := s.deps.now()
		co.ApprovedAt = &now
	} else {
		co.ApprovedAt = nil
	}
}

// === 预算科目 ===

func (s *FinancialService) ListBudgetLines(ctx context.Context, companyID, projectID string) ([]entity.BudgetLine, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListBudgetLines(ctx, companyID, projectID)
}

func (s *FinancialService) CreateBudgetLine(ctx context.Context, companyID, projectID string, req *CreateBudgetLineRequest) (*entity.BudgetLine, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	line := &entity.BudgetLine{
		ID:             uuid.New().String()[:32],
		CompanyID:      companyID,
		ProjectID:      projectID,
		CostCode:       req.CostCode,
		Description:    req.Description,
		BudgetedAmount: metrics.ToNullDecimal(req.BudgetedAmount),
		ActualAmount:   metrics.ToNullDecimal(req.ActualAmount),
	}
	if err := s.repo.CreateBudgetLine(ctx, line); err != nil {
		return nil, fmt.Errorf("create budget line: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, line.ID, "budget_line_create")
	return line, nil
}

func (s *FinancialService) UpdateBudgetLine(ctx context.Context, companyID, id string, req *UpdateBudgetLineRequest) (*entity.BudgetLine, error) {
	line, err := s.repo.FindBudgetLine(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.CostCode != nil {
		line.CostCode = *req.CostCode
	}
	if req.Description != nil {
		line.Description = *req.Description
	}
	if req.BudgetedAmount != nil {
		line.BudgetedAmount = metrics.ToNullDecimal(req.BudgetedAmount)
	}
	if req.ActualAmount != nil {
		line.ActualAmount = metrics.ToNullDecimal(req.ActualAmount)
	}
	if err := s.repo.UpdateBudgetLine(ctx, line); err != nil {
		return nil, fmt.Errorf("update budget line: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, line.ID, "budget_line_update")
	return line, nil
}

func (s *FinancialService) DeleteBudgetLine(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteBudgetLine(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBudgetUpdate, id, "budget_line_delete")
	return nil
}
