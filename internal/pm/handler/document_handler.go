package handler

import (
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// DocumentHandler 送审/RFI处理器
type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// SubmittalLog 送审台账
// GET /api/v1/projects/:id/submittals?status=xxx&overdue=true
func (h *DocumentHandler) SubmittalLog(c *gin.Context) {
	f := metrics.SubmittalFilter{
		Status:      metrics.SubmittalStatus(c.Query("status")),
		OverdueOnly: c.Query("overdue") == "true",
	}
	log, err := h.svc.SubmittalLog(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), f)
	if err != nil {
		handleError(c, err, "项目不存在", "获取送审台账失败")
		return
	}
	response.Success(c, log)
}

// GetSubmittal 送审详情
// GET /api/v1/submittals/:id
func (h *DocumentHandler) GetSubmittal(c *gin.Context) {
	sub, err := h.svc.GetSubmittal(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "送审不存在", "获取送审失败")
		return
	}
	response.Success(c, sub)
}

// CreateSubmittal 创建送审
// POST /api/v1/projects/:id/submittals
func (h *DocumentHandler) CreateSubmittal(c *gin.Context) {
	var req service.CreateSubmittalRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.CreateSubmittal(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建送审失败")
		return
	}
	response.Created(c, sub)
}

// UpdateSubmittal 更新送审
// PUT /api/v1/submittals/:id
func (h *DocumentHandler) UpdateSubmittal(c *gin.Context) {
	var req service.UpdateSubmittalRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.UpdateSubmittal(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "送审不存在", "更新送审失败")
		return
	}
	response.Success(c, sub)
}

// DeleteSubmittal 删除送审
// DELETE /api/v1/submittals/:id
func (h *DocumentHandler) DeleteSubmittal(c *gin.Context) {
	if err := h.svc.DeleteSubmittal(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "送审不存在", "删除送审失败")
		return
	}
	response.Success(c, nil)
}

// RFILog RFI台账
// GET /api/v1/projects/:id/rfis?status=open
func (h *DocumentHandler) RFILog(c *gin.Context) {
	log, err := h.svc.RFILog(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), c.Query("status"))
	if err != nil {
		handleError(c, err, "项目不存在", "获取RFI台账失败")
		return
	}
	response.Success(c, log)
}

// GetRFI RFI详情
// GET /api/v1/rfis/:id
func (h *DocumentHandler) GetRFI(c *gin.Context) {
	rfi, err := h.svc.GetRFI(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "RFI不存在", "获取RFI失败")
		return
	}
	response.Success(c, rfi)
}

// CreateRFI 创建RFI
// POST /api/v1/projects/:id/rfis
func (h *DocumentHandler) CreateRFI(c *gin.Context) {
	var req service.CreateRFIRequest
	if !bindJSON(c, &req) {
		return
	}
	rfi, err := h.svc.CreateRFI(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "项目不存在", "创建RFI失败")
		return
	}
	response.Created(c, rfi)
}

// UpdateRFI 更新RFI
// PUT /api/v1/rfis/:id
func (h *DocumentHandler) UpdateRFI(c *gin.Context) {
	var req service.UpdateRFIRequest
	if !bindJSON(c, &req) {
		return
	}
	rfi, err := h.svc.UpdateRFI(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "RFI不存在", "更新RFI失败")
		return
	}
	response.Success(c, rfi)
}

// DeleteRFI 删除RFI
// DELETE /api/v1/rfis/:id
func (h *DocumentHandler) DeleteRFI(c *gin.Context) {
	if err := h.svc.DeleteRFI(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "RFI不存在", "删除RFI失败")
		return
	}
	response.Success(c, nil)
}
