package handler

import (
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// DailyLogHandler 施工日志处理器
type DailyLogHandler struct {
	svc *service.DailyLogService
}

func NewDailyLogHandler(svc *service.DailyLogService) *DailyLogHandler {
	return &DailyLogHandler{svc: svc}
}

// List 日志列表
// GET /api/v1/projects/:id/daily-logs
func (h *DailyLogHandler) List(c *gin.Context) {
	logs, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取施工日志失败")
		return
	}
	response.Success(c, logs)
}

// Get 日志详情
// GET /api/v1/daily-logs/:id
func (h *DailyLogHandler) Get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "施工日志不存在", "获取施工日志失败")
		return
	}
	response.Success(c, l)
}

// Create 创建日志
// POST /api/v1/projects/:id/daily-logs
func (h *DailyLogHandler) Create(c *gin.Context) {
	var req service.DailyLogRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建施工日志失败")
		return
	}
	response.Created(c, l)
}

// Update 更新日志
// PUT /api/v1/daily-logs/:id
func (h *DailyLogHandler) Update(c *gin.Context) {
	var req service.DailyLogRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "施工日志不存在", "更新施工日志失败")
		return
	}
	response.Success(c, l)
}

// Delete 删除日志
// DELETE /api/v1/daily-logs/:id
func (h *DailyLogHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "施工日志不存在", "删除施工日志失败")
		return
	}
	response.Success(c, nil)
}
