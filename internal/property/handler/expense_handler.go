package handler

import (
	"io"

	"github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler 物业费用处理器
type ExpenseHandler struct {
	svc *service.ExpenseService
}

func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

func expenseFilter(c *gin.Context) service.ExpenseListFilter {
	return service.ExpenseListFilter{
		PropertyID:  c.Query("property_id"),
		ExpenseType: c.Query("expense_type"),
		Frequency:   c.Query("frequency"),
	}
}

// List 费用列表
// GET /api/v1/property-expenses?property_id=xxx&expense_type=utilities&frequency=monthly
func (h *ExpenseHandler) List(c *gin.Context) {
	page, pageSize := response.GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), expenseFilter(c), page, pageSize)
	if err != nil {
		response.InternalError(c, "获取费用列表失败: "+err.Error())
		return
	}
	response.Paged(c, items, total, page, pageSize)
}

// Summary 费用汇总
// GET /api/v1/property-expenses/summary
func (h *ExpenseHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), response.GetCompanyID(c), expenseFilter(c))
	if err != nil {
		response.InternalError(c, "获取费用汇总失败: "+err.Error())
		return
	}
	response.Success(c, summary)
}

// Get 费用详情
// GET /api/v1/property-expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "费用不存在", "获取费用失败")
		return
	}
	response.Success(c, e)
}

// Create 创建费用
// POST /api/v1/property-expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req service.CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "物业不存在", "创建费用失败")
		return
	}
	response.Created(c, e)
}

// Update 更新费用
// PUT /api/v1/property-expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "费用不存在", "更新费用失败")
		return
	}
	response.Success(c, e)
}

// Delete 删除费用
// DELETE /api/v1/property-expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "费用不存在", "删除费用失败")
		return
	}
	response.Success(c, nil)
}

// Import 导入费用
// POST /api/v1/property-expenses/import (multipart file, property_id)
func (h *ExpenseHandler) Import(c *gin.Context) {
	handleImport(c, "导入费用失败", func(c *gin.Context, propertyID, fileName string, f io.Reader) (*importer.Result, error) {
		return h.svc.Import(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), propertyID, fileName, f)
	})
}

// Export 导出费用xlsx
// GET /api/v1/property-expenses/export
func (h *ExpenseHandler) Export(c *gin.Context) {
	data, key, err := h.svc.Export(c.Request.Context(), response.GetCompanyID(c), expenseFilter(c))
	if err != nil {
		response.InternalError(c, "导出费用失败: "+err.Error())
		return
	}
	sendReport(c, "property_expenses.xlsx", key, data)
}
