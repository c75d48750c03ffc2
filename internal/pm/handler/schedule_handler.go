package handler

import (
	"fmt"
	"net/http"

	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler 进度处理器
type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// Schedule 项目进度视图
// GET /api/v1/projects/:id/schedule
func (h *ScheduleHandler) Schedule(c *gin.Context) {
	view, err := h.svc.Schedule(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取项目进度失败")
		return
	}
	response.Success(c, view)
}

// Export 导出进度xlsx
// GET /api/v1/projects/:id/schedule/export
func (h *ScheduleHandler) Export(c *gin.Context) {
	data, err := h.svc.ExportSchedule(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "导出进度失败")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule_%s.xlsx"`, c.Param("id")))
	c.Data(http.StatusOK, report.ContentType, data)
}

// ListPhases 阶段列表
// GET /api/v1/projects/:id/phases
func (h *ScheduleHandler) ListPhases(c *gin.Context) {
	phases, err := h.svc.ListPhases(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取阶段列表失败")
		return
	}
	response.Success(c, phases)
}

// CreatePhase 创建阶段
// POST /api/v1/projects/:id/phases
func (h *ScheduleHandler) CreatePhase(c *gin.Context) {
	var req service.CreatePhaseRequest
	if !bindJSON(c, &req) {
		return
	}
	phase, err := h.svc.CreatePhase(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建阶段失败")
		return
	}
	response.Created(c, phase)
}

// UpdatePhase 更新阶段
// PUT /api/v1/phases/:id
func (h *ScheduleHandler) UpdatePhase(c *gin.Context) {
	var req service.UpdatePhaseRequest
	if !bindJSON(c, &req) {
		return
	}
	phase, err := h.svc.UpdatePhase(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "阶段不存在", "更新阶段失败")
		return
	}
	response.Success(c, phase)
}

// DeletePhase 删除阶段
// DELETE /api/v1/phases/:id
func (h *ScheduleHandler) DeletePhase(c *gin.Context) {
	if err := h.svc.DeletePhase(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "阶段不存在", "删除阶段失败")
		return
	}
	response.Success(c, nil)
}

// ListTasks 任务列表
// GET /api/v1/projects/:id/tasks?phase_id=xxx|none&status=xxx&window=overdue
func (h *ScheduleHandler) ListTasks(c *gin.Context) {
	filters := map[string]string{
		"phase_id": c.Query("phase_id"),
		"status":   c.Query("status"),
		"window":   c.Query("window"),
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), filters)
	if err != nil {
		handleError(c, err, "项目不存在", "获取任务列表失败")
		return
	}
	response.Success(c, tasks)
}

// GetTask 任务详情
// GET /api/v1/tasks/:id
func (h *ScheduleHandler) GetTask(c *gin.Context) {
	task, err := h.svc.GetTask(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "任务不存在", "获取任务失败")
		return
	}
	response.Success(c, task)
}

// CreateTask 创建任务
// POST /api/v1/projects/:id/tasks
func (h *ScheduleHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建任务失败")
		return
	}
	response.Created(c, task)
}

// UpdateTask 更新任务
// PUT /api/v1/tasks/:id
func (h *ScheduleHandler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "任务不存在", "更新任务失败")
		return
	}
	response.Success(c, task)
}

// DeleteTask 删除任务
// DELETE /api/v1/tasks/:id
func (h *ScheduleHandler) DeleteTask(c *gin.Context) {
	if err := h.svc.DeleteTask(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "任务不存在", "删除任务失败")
		return
	}
	response.Success(c, nil)
}
