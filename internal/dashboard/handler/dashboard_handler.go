package handler

import (
	"github.com/bitfantasy/nimo-build/internal/dashboard/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// RegisterRoutes 注册 /dashboard 路由
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Overview)
}

// Overview 公司看板
// GET /api/v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context(), response.GetCompanyID(c))
	if err != nil {
		response.InternalError(c, "获取看板数据失败: "+err.Error())
		return
	}
	response.Success(c, ov)
}
