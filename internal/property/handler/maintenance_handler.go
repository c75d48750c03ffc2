package handler

import (
	"io"

	"github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// MaintenanceHandler 维修工单处理器
type MaintenanceHandler struct {
	svc *service.MaintenanceService
}

func NewMaintenanceHandler(svc *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

func maintenanceFilter(c *gin.Context) service.MaintenanceListFilter {
	return service.MaintenanceListFilter{
		PropertyID: c.Query("property_id"),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Status:     metrics.MaintenanceStatus(c.Query("status")),
		Priority:   metrics.MaintenancePriority(c.Query("priority")),
		OpenOnly:   c.Query("open") == "true",
		Window:     metrics.Window(c.Query("window")),
	}
}

// List 工单列表
// GET /api/v1/maintenance-requests?property_id=xxx&status=xxx&priority=emergency&open=true&window=overdue
func (h *MaintenanceHandler) List(c *gin.Context) {
	page, pageSize := response.GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), maintenanceFilter(c), page, pageSize)
	if err != nil {
		response.InternalError(c, "获取工单列表失败: "+err.Error())
		return
	}
	response.Paged(c, items, total, page, pageSize)
}

// KPIs 工单统计
// GET /api/v1/maintenance-requests/kpis
func (h *MaintenanceHandler) KPIs(c *gin.Context) {
	k, err := h.svc.KPIs(c.Request.Context(), response.GetCompanyID(c), maintenanceFilter(c))
	if err != nil {
		response.InternalError(c, "获取工单统计失败: "+err.Error())
		return
	}
	response.Success(c, k)
}

// Get 工单详情
// GET /api/v1/maintenance-requests/:id
func (h *MaintenanceHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "工单不存在", "获取工单失败")
		return
	}
	response.Success(c, m)
}

// Create 创建工单
// POST /api/v1/maintenance-requests
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req service.CreateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "物业不存在", "创建工单失败")
		return
	}
	response.Created(c, m)
}

// Update 更新工单
// PUT /api/v1/maintenance-requests/:id
func (h *MaintenanceHandler) Update(c *gin.Context) {
	var req service.UpdateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "工单不存在", "更新工单失败")
		return
	}
	response.Success(c, m)
}

// Delete 删除工单
// DELETE /api/v1/maintenance-requests/:id
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "工单不存在", "删除工单失败")
		return
	}
	response.Success(c, nil)
}

// Import 导入工单
// POST /api/v1/maintenance-requests/import (multipart file, property_id)
func (h *MaintenanceHandler) Import(c *gin.Context) {
	handleImport(c, "导入工单失败", func(c *gin.Context, propertyID, fileName string, f io.Reader) (*importer.Result, error) {
		return h.svc.Import(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), propertyID, fileName, f)
	})
}
