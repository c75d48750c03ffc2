package handler

import (
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List 项目列表
// GET /api/v1/projects?status=xxx&search=xxx&page=1&page_size=20
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := response.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}
	items, total, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), page, pageSize, filters)
	if err != nil {
		response.InternalError(c, "获取项目列表失败: "+err.Error())
		return
	}
	response.Paged(c, items, total, page, pageSize)
}

// Get 项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取项目失败")
		return
	}
	response.Success(c, project)
}

// Create 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建项目失败")
		return
	}
	response.Created(c, project)
}

// Update 更新项目
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "更新项目失败")
		return
	}
	response.Success(c, project)
}

// Delete 删除项目
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "项目不存在", "删除项目失败")
		return
	}
	response.Success(c, nil)
}

// Budget 项目预算视图
// GET /api/v1/projects/:id/budget
func (h *ProjectHandler) Budget(c *gin.Context) {
	budget, err := h.svc.Budget(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取项目预算失败")
		return
	}
	response.Success(c, budget)
}
