package handler

import (
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// FinancialHandler 变更单/预算科目处理器
type FinancialHandler struct {
	svc *service.FinancialService
}

func NewFinancialHandler(svc *service.FinancialService) *FinancialHandler {
	return &FinancialHandler{svc: svc}
}

// ListChangeOrders 变更单列表
// GET /api/v1/projects/:id/change-orders
func (h *FinancialHandler) ListChangeOrders(c *gin.Context) {
	items, err := h.svc.ListChangeOrders(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取变更单失败")
		return
	}
	response.Success(c, items)
}

// CreateChangeOrder 创建变更单
// POST /api/v1/projects/:id/change-orders
func (h *FinancialHandler) CreateChangeOrder(c *gin.Context) {
	var req service.CreateChangeOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.svc.CreateChangeOrder(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建变更单失败")
		return
	}
	response.Created(c, co)
}

// UpdateChangeOrder 更新变更单
// PUT /api/v1/change-orders/:id
func (h *FinancialHandler) UpdateChangeOrder(c *gin.Context) {
	var req service.UpdateChangeOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.svc.UpdateChangeOrder(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "变更单不存在", "更新变更单失败")
		return
	}
	response.Success(c, co)
}

// DeleteChangeOrder 删除变更单
// DELETE /api/v1/change-orders/:id
func (h *FinancialHandler) DeleteChangeOrder(c *gin.Context) {
	if err := h.svc.DeleteChangeOrder(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "变更单不存在", "删除变更单失败")
		return
	}
	response.Success(c, nil)
}

// ListBudgetLines 预算科目列表
// GET /api/v1/projects/:id/budget-lines
func (h *FinancialHandler) ListBudgetLines(c *gin.Context) {
	items, err := h.svc.ListBudgetLines(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取预算科目失败")
		return
	}
	response.Success(c, items)
}

// CreateBudgetLine 创建预算科目
// POST /api/v1/projects/:id/budget-lines
func (h *FinancialHandler) CreateBudgetLine(c *gin.Context) {
	var req service.CreateBudgetLineRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.svc.CreateBudgetLine(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建预算科目失败")
		return
	}
	response.Created(c, line)
}

// UpdateBudgetLine 更新预算科目
// PUT /api/v1/budget-lines/:id
func (h *FinancialHandler) UpdateBudgetLine(c *gin.Context) {
	var req service.UpdateBudgetLineRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.svc.UpdateBudgetLine(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "预算科目不存在", "更新预算科目失败")
		return
	}
	response.Success(c, line)
}

// DeleteBudgetLine 删除预算科目
// DELETE /api/v1/budget-lines/:id
func (h *FinancialHandler) DeleteBudgetLine(c *gin.Context) {
	if err := h.svc.DeleteBudgetLine(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "预算科目不存在", "删除预算科目失败")
		return
	}
	response.Success(c, nil)
}
