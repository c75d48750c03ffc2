package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-build/internal/crm/repository"
	"github.com/bitfantasy/nimo-build/internal/crm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handlers CRM处理器集合
type Handlers struct {
	Bid *BidHandler
}

func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Bid: NewBidHandler(svcs.Bid),
	}
}

// RegisterRoutes 注册 /bids 路由
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	bids := rg.Group("/bids")
	{
		bids.GET("", h.Bid.List)
		bids.GET("/summary", h.Bid.Summary)
		bids.GET("/export", h.Bid.Export)
		bids.POST("/import", h.Bid.Import)
		bids.POST("", h.Bid.Create)
		bids.GET("/:id", h.Bid.Get)
		bids.PUT("/:id", h.Bid.Update)
		bids.DELETE("/:id", h.Bid.Delete)
	}
}

// handleError 按错误类型返回响应
func handleError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, notFoundMsg)
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, "参数错误: "+err.Error())
	default:
		response.InternalError(c, failMsg+": "+err.Error())
	}
}
