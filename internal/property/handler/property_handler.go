package handler

import (
	"github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// PropertyHandler 物业处理器
type PropertyHandler struct {
	svc *service.PropertyService
}

func NewPropertyHandler(svc *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

// List 物业列表
// GET /api/v1/properties?search=xxx
func (h *PropertyHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), c.Query("search"))
	if err != nil {
		response.InternalError(c, "获取物业列表失败: "+err.Error())
		return
	}
	response.Success(c, items)
}

// Get 物业详情
// GET /api/v1/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "物业不存在", "获取物业失败")
		return
	}
	response.Success(c, p)
}

// Create 创建物业
// POST /api/v1/properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req service.CreatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "物业不存在", "创建物业失败")
		return
	}
	response.Created(c, p)
}

// Update 更新物业
// PUT /api/v1/properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	var req service.UpdatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "物业不存在", "更新物业失败")
		return
	}
	response.Success(c, p)
}

// Delete 删除物业
// DELETE /api/v1/properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "物业不存在", "删除物业失败")
		return
	}
	response.Success(c, nil)
}
